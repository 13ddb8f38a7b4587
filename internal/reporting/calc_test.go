package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeteria/backend/internal/domain"
)

func TestVariation(t *testing.T) {
	cases := []struct {
		actual, previous, want float64
	}{
		{0, 0, 0},
		{50, 0, 100},
		{150, 100, 50},
		{90, 100, -10},
		{1, 3, -66.67},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Variation(tc.actual, tc.previous), "variation(%v, %v)", tc.actual, tc.previous)
	}
}

func TestTrendBucketBoundaries(t *testing.T) {
	assert.Equal(t, domain.TrendStrongGrowth, TrendBucket(10.01))
	assert.Equal(t, domain.TrendModerateGrowth, TrendBucket(10))
	assert.Equal(t, domain.TrendModerateGrowth, TrendBucket(0.01))
	assert.Equal(t, domain.TrendStable, TrendBucket(0))
	assert.Equal(t, domain.TrendModerateDecline, TrendBucket(-9.99))
	assert.Equal(t, domain.TrendStrongDecline, TrendBucket(-10))
}

func TestClassifiers(t *testing.T) {
	assert.Equal(t, "Alta", ClassifyFrequency(20))
	assert.Equal(t, "Media", ClassifyFrequency(19))
	assert.Equal(t, "Baja", ClassifyFrequency(5))
	assert.Equal(t, "Muy Baja", ClassifyFrequency(4))

	assert.Equal(t, "Producto Estrella", ClassifyProduct(100))
	assert.Equal(t, "Producto Popular", ClassifyProduct(50))
	assert.Equal(t, "Producto Regular", ClassifyProduct(10))
	assert.Equal(t, "Producto Lento", ClassifyProduct(1))
	assert.Equal(t, "Sin Ventas", ClassifyProduct(0))

	assert.Equal(t, "Excelente", ClassifyCategory(500001))
	assert.Equal(t, "Bueno", ClassifyCategory(500000))
	assert.Equal(t, "Regular", ClassifyCategory(50001))
	assert.Equal(t, "Bajo", ClassifyCategory(50000))
}

func TestProject(t *testing.T) {
	assert.Equal(t, int64(70000), Project(10000, 7))
	assert.Equal(t, int64(45), Project(1.5, 30))
	assert.Equal(t, int64(-300), Project(-10, 30))
}

func TestRankProductsIgnoresInputOrder(t *testing.T) {
	rows := []domain.ProductAggregate{
		{ProductID: 3, Name: "c", Revenue: 500},
		{ProductID: 1, Name: "a", Revenue: 1000},
		{ProductID: 2, Name: "b", Revenue: 500},
	}
	reversed := []domain.ProductAggregate{rows[2], rows[1], rows[0]}

	first := RankProducts(rows, 0)
	second := RankProducts(reversed, 0)
	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, []int64{1, 2, 3}, []int64{first[0].ProductID, first[1].ProductID, first[2].ProductID})
	assert.Equal(t, 50.0, first[0].RevenueShare)
}

func TestRankProductsLimitKeepsShareOfWholeWindow(t *testing.T) {
	rows := []domain.ProductAggregate{
		{ProductID: 1, Revenue: 300},
		{ProductID: 2, Revenue: 100},
	}
	ranked := RankProducts(rows, 1)
	require.Len(t, ranked, 1)
	assert.Equal(t, 75.0, ranked[0].RevenueShare)
}

func TestRankCategories(t *testing.T) {
	rows := []domain.ProductAggregate{
		{ProductID: 1, Category: "Bebidas", Units: 2, Revenue: 3000, Transactions: 2},
		{ProductID: 2, Category: "Postres", Units: 1, Revenue: 3500, Transactions: 1},
		{ProductID: 3, Category: "Bebidas", Units: 1, Revenue: 2200, Transactions: 1},
		{ProductID: 4, Category: "", Units: 0, Revenue: 0, Transactions: 0},
	}
	cats := RankCategories(rows, map[string]string{"Bebidas": "🥤"})
	require.Len(t, cats, 3)

	assert.Equal(t, "Bebidas", cats[0].Category)
	assert.Equal(t, "🥤", cats[0].Emoji)
	assert.Equal(t, int64(2), cats[0].Products)
	assert.Equal(t, 5200.0, cats[0].Revenue)
	assert.Equal(t, 1733.33, cats[0].AverageTicket)
	assert.Equal(t, "Postres", cats[1].Category)
	assert.Equal(t, domain.DefaultCategory, cats[2].Category)
	assert.Equal(t, int64(0), cats[2].Products)
}

func TestSummarizeEmptyPeriodUsesZeroDays(t *testing.T) {
	s := summarize(nil, domain.SalesTotals{}, domain.ExpenseTotals{})
	assert.Equal(t, domain.DayBucket{}, s.BestDay)
	assert.Equal(t, domain.DayBucket{}, s.WorstDay)
	assert.Zero(t, s.AverageDailyRevenue)
}

func TestWeekdayBuckets(t *testing.T) {
	days := []domain.DayAggregate{
		{Date: "2024-03-04", Transactions: 4, Units: 6, Revenue: 8000},
		{Date: "2024-03-11", Transactions: 2, Units: 2, Revenue: 4000},
		{Date: "2024-03-08", Transactions: 1, Units: 1, Revenue: 1000},
	}
	buckets := weekdayBuckets(days)
	require.Len(t, buckets, 2)

	monday := buckets[0]
	assert.Equal(t, int(time.Monday), monday.Weekday)
	assert.Equal(t, "Lunes", monday.DayName)
	assert.Equal(t, int64(2), monday.DaysObserved)
	assert.Equal(t, 6000.0, monday.AvgDailyRevenue)
	assert.Equal(t, 3.0, monday.AvgDailyTransactions)
	assert.Equal(t, 2000.0, monday.AverageTicket)
	assert.Equal(t, "Viernes", buckets[1].DayName)
}

func TestFillDaysCoversEveryCalendarDay(t *testing.T) {
	r := domain.NewDateRange(
		time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	)
	out := fillDays(r,
		[]domain.DayAggregate{{Date: "2024-02-29", Transactions: 1, Revenue: 2000}},
		[]domain.DayExpense{{Date: "2024-03-01", Amount: 500}},
	)
	require.Len(t, out, 3)
	assert.Equal(t, "2024-02-28", out[0].Date)
	assert.Equal(t, 2000.0, out[1].Revenue)
	assert.Equal(t, "29/02", out[1].ShortDate)
	assert.Equal(t, -500.0, out[2].NetProfit)
}

func TestHourPeriodAndNames(t *testing.T) {
	assert.Equal(t, "Apertura", HourPeriod(6))
	assert.Equal(t, "Rush Matutino", HourPeriod(9))
	assert.Equal(t, "Media Mañana", HourPeriod(10))
	assert.Equal(t, "Pre-Cierre", HourPeriod(11))
	assert.Equal(t, "Fuera de Horario", HourPeriod(15))
	assert.Equal(t, "Domingo", DayName(time.Sunday))
	assert.Equal(t, "Miércoles", DayName(time.Wednesday))
	assert.Equal(t, "Sábado", DayName(time.Saturday))
	assert.Equal(t, "Febrero", MonthName(time.February))
	assert.Equal(t, "Septiembre", MonthName(time.September))
	assert.Equal(t, "", MonthName(0))
}

func TestMonthBucketsCompareWithPreviousMonth(t *testing.T) {
	out := monthBuckets([]domain.MonthAggregate{
		{Month: "2024-01", Revenue: 20000, ActiveDays: 2},
		{Month: "2024-02", Revenue: 15000, ActiveDays: 3},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "Enero", out[0].MonthName)
	assert.Equal(t, domain.TrendStable, out[0].Trend)
	assert.Equal(t, 10000.0, out[0].AvgDailyRevenue)
	assert.Equal(t, -25.0, out[1].Variation)
	assert.Equal(t, domain.TrendStrongDecline, out[1].Trend)
}

func TestClockLabel(t *testing.T) {
	assert.Equal(t, "6:00 AM", clockLabel(6))
	assert.Equal(t, "12:00 PM", clockLabel(12))
	assert.Equal(t, "12:00 AM", clockLabel(0))
	assert.Equal(t, "3:00 PM", clockLabel(15))
}
