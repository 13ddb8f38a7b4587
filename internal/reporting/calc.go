package reporting

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/recommendation"
)

// Variation is the percentage change from previous to actual, rounded to two
// decimals. A zero previous value yields 100 when actual is positive and 0
// otherwise.
func Variation(actual float64, previous float64) float64 {
	if previous == 0 {
		if actual > 0 {
			return 100
		}
		return 0
	}
	return round2((actual - previous) / previous * 100)
}

func TrendBucket(variation float64) string {
	switch {
	case variation > 10:
		return domain.TrendStrongGrowth
	case variation > 0:
		return domain.TrendModerateGrowth
	case variation == 0:
		return domain.TrendStable
	case variation > -10:
		return domain.TrendModerateDecline
	default:
		return domain.TrendStrongDecline
	}
}

func Compare(actual float64, previous float64) domain.MetricComparison {
	v := Variation(actual, previous)
	return domain.MetricComparison{
		Actual:    round2(actual),
		Previous:  round2(previous),
		Variation: v,
		Trend:     TrendBucket(v),
	}
}

// Project is the flat forecast of a daily mean over the given number of days.
func Project(avgDaily float64, days int) int64 {
	return int64(math.Round(avgDaily * float64(days)))
}

func ClassifyFrequency(daysSold int64) string {
	switch {
	case daysSold >= 20:
		return "Alta"
	case daysSold >= 10:
		return "Media"
	case daysSold >= 5:
		return "Baja"
	default:
		return "Muy Baja"
	}
}

func ClassifyProduct(units int64) string {
	switch {
	case units >= 100:
		return "Producto Estrella"
	case units >= 50:
		return "Producto Popular"
	case units >= 10:
		return "Producto Regular"
	case units > 0:
		return "Producto Lento"
	default:
		return "Sin Ventas"
	}
}

func ClassifyCategory(revenue float64) string {
	switch {
	case revenue > 500000:
		return "Excelente"
	case revenue > 200000:
		return "Bueno"
	case revenue > 50000:
		return "Regular"
	default:
		return "Bajo"
	}
}

func HourPeriod(hour int) string {
	switch {
	case hour >= 6 && hour <= 7:
		return "Apertura"
	case hour >= 8 && hour <= 9:
		return "Rush Matutino"
	case hour == 10:
		return "Media Mañana"
	case hour == 11:
		return "Pre-Cierre"
	default:
		return "Fuera de Horario"
	}
}

func WeekdayDescription(weekday time.Weekday) string {
	switch weekday {
	case time.Monday:
		return "Inicio de semana, clientes retomando rutina"
	case time.Tuesday, time.Wednesday, time.Thursday:
		return "Día laboral regular"
	case time.Friday:
		return "Fin de semana laboral, mayor movimiento"
	case time.Saturday:
		return "Fin de semana, público familiar"
	default:
		return "Domingo, horario de descanso"
	}
}

var dayNames = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// DayName is the capitalised Spanish weekday name used in report labels.
func DayName(weekday time.Weekday) string {
	return recommendation.Title(dayNames[weekday])
}

func MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return recommendation.Title(monthNames[month-1])
}

// RankProducts orders rows by revenue descending. Equal revenue falls back to
// ascending product id so the order does not depend on input order.
func RankProducts(rows []domain.ProductAggregate, limit int) []domain.RankedProduct {
	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b domain.ProductAggregate) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	var total float64
	for _, row := range sorted {
		total += row.Revenue
	}
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]domain.RankedProduct, 0, len(sorted))
	for _, row := range sorted {
		out = append(out, domain.RankedProduct{
			ProductID:     row.ProductID,
			Name:          row.Name,
			Category:      row.Category,
			Units:         row.Units,
			Revenue:       round2(row.Revenue),
			Transactions:  row.Transactions,
			AverageTicket: round2(row.AverageTicket),
			AveragePrice:  round2(row.AverageUnitPrice),
			DaysSold:      row.DaysSold,
			RevenueShare:  share(row.Revenue, total),
		})
	}
	return out
}

// RankCategories folds product rows into categories ordered like products.
// Products counts the distinct products with at least one sale.
func RankCategories(rows []domain.ProductAggregate, emoji map[string]string) []domain.CategorySummary {
	byCategory := map[string]*domain.CategorySummary{}
	order := make([]string, 0, 8)
	var total float64
	for _, row := range rows {
		name := row.Category
		if name == "" {
			name = domain.DefaultCategory
		}
		c := byCategory[name]
		if c == nil {
			c = &domain.CategorySummary{Category: name, Emoji: emoji[name]}
			byCategory[name] = c
			order = append(order, name)
		}
		if row.Transactions > 0 {
			c.Products++
		}
		c.Units += row.Units
		c.Revenue += row.Revenue
		c.Transactions += row.Transactions
		total += row.Revenue
	}

	out := make([]domain.CategorySummary, 0, len(order))
	for _, name := range order {
		c := byCategory[name]
		c.AverageTicket = round2(average(c.Revenue, c.Transactions))
		c.RevenueShare = share(c.Revenue, total)
		c.Revenue = round2(c.Revenue)
		out = append(out, *c)
	}
	slices.SortStableFunc(out, func(a, b domain.CategorySummary) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

func hourBuckets(rows []domain.HourAggregate) []domain.HourBucket {
	var total int64
	for _, row := range rows {
		total += row.Transactions
	}
	out := make([]domain.HourBucket, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.HourBucket{
			Hour:             row.Hour,
			Label:            fmt.Sprintf("%02d:00", row.Hour),
			Period:           HourPeriod(row.Hour),
			Transactions:     row.Transactions,
			Units:            row.Units,
			Revenue:          round2(row.Revenue),
			AverageTicket:    round2(row.AverageTicket),
			TransactionShare: share(float64(row.Transactions), float64(total)),
			DaysAnalyzed:     row.DaysAnalyzed,
		})
	}
	return out
}

// byTransactions sorts hour buckets busiest first, earlier hour on ties.
func byTransactions(buckets []domain.HourBucket) []domain.HourBucket {
	sorted := slices.Clone(buckets)
	slices.SortFunc(sorted, func(a, b domain.HourBucket) int {
		if c := cmp.Compare(b.Transactions, a.Transactions); c != 0 {
			return c
		}
		return cmp.Compare(a.Hour, b.Hour)
	})
	return sorted
}

// dayBuckets joins daily sales with the expenses booked on the same date.
func dayBuckets(sales []domain.DayAggregate, expenses []domain.DayExpense) []domain.DayBucket {
	expenseByDate := make(map[string]float64, len(expenses))
	for _, e := range expenses {
		expenseByDate[e.Date] += e.Amount
	}
	out := make([]domain.DayBucket, 0, len(sales))
	for _, day := range sales {
		out = append(out, dayBucket(day, expenseByDate[day.Date]))
	}
	return out
}

func dayBucket(day domain.DayAggregate, expenses float64) domain.DayBucket {
	b := domain.DayBucket{
		Date:             day.Date,
		Transactions:     day.Transactions,
		Units:            day.Units,
		Revenue:          round2(day.Revenue),
		AverageTicket:    round2(day.AverageTicket),
		DistinctProducts: day.DistinctProducts,
		FirstSale:        day.FirstSale,
		LastSale:         day.LastSale,
		Expenses:         round2(expenses),
		NetProfit:        round2(day.Revenue - expenses),
	}
	if t, err := time.Parse(domain.DateLayout, day.Date); err == nil {
		b.Weekday = int(t.Weekday())
		b.DayName = DayName(t.Weekday())
		b.ShortDate = t.Format("02/01")
	}
	return b
}

// fillDays returns one bucket per calendar day of r, zero-valued where the
// store reported no sales.
func fillDays(r domain.DateRange, sales []domain.DayAggregate, expenses []domain.DayExpense) []domain.DayBucket {
	byDate := make(map[string]domain.DayAggregate, len(sales))
	for _, day := range sales {
		byDate[day.Date] = day
	}
	expenseByDate := make(map[string]float64, len(expenses))
	for _, e := range expenses {
		expenseByDate[e.Date] += e.Amount
	}

	out := make([]domain.DayBucket, 0, r.Days())
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		date := d.Format(domain.DateLayout)
		day, ok := byDate[date]
		if !ok {
			day = domain.DayAggregate{Date: date}
		}
		out = append(out, dayBucket(day, expenseByDate[date]))
	}
	return out
}

func summarize(days []domain.DayBucket, totals domain.SalesTotals, expenses domain.ExpenseTotals) domain.PeriodSummary {
	s := domain.PeriodSummary{
		DaysOperated:  int64(len(days)),
		Transactions:  totals.Transactions,
		Units:         totals.Units,
		Revenue:       round2(totals.Revenue),
		Expenses:      round2(expenses.Amount),
		NetProfit:     round2(totals.Revenue - expenses.Amount),
		AverageTicket: round2(totals.AverageTicket),
	}
	if len(days) == 0 {
		return s
	}
	s.AverageDailyRevenue = round2(totals.Revenue / float64(len(days)))

	best, worst, busiest := days[0], days[0], days[0]
	for _, day := range days[1:] {
		if day.Revenue > best.Revenue {
			best = day
		}
		if day.Revenue < worst.Revenue {
			worst = day
		}
		if day.Transactions > busiest.Transactions {
			busiest = day
		}
	}
	s.BestDay, s.WorstDay, s.BusiestDay = best, worst, busiest
	return s
}

// weekdayBuckets folds daily rows into day-of-week buckets with per-day means.
// Weekdays without any sale day are omitted.
func weekdayBuckets(days []domain.DayAggregate) []domain.WeekdayBucket {
	var buckets [7]domain.WeekdayBucket
	for _, day := range days {
		t, err := time.Parse(domain.DateLayout, day.Date)
		if err != nil {
			continue
		}
		b := &buckets[t.Weekday()]
		b.DaysObserved++
		b.Transactions += day.Transactions
		b.Units += day.Units
		b.Revenue += day.Revenue
	}

	out := make([]domain.WeekdayBucket, 0, 7)
	for i := range buckets {
		b := buckets[i]
		if b.DaysObserved == 0 {
			continue
		}
		weekday := time.Weekday(i)
		b.Weekday = i
		b.DayName = DayName(weekday)
		b.AverageTicket = round2(average(b.Revenue, b.Transactions))
		b.AvgDailyRevenue = round2(b.Revenue / float64(b.DaysObserved))
		b.AvgDailyTransactions = round2(float64(b.Transactions) / float64(b.DaysObserved))
		b.AvgDailyUnits = round2(float64(b.Units) / float64(b.DaysObserved))
		b.Revenue = round2(b.Revenue)
		b.Description = WeekdayDescription(weekday)
		out = append(out, b)
	}
	return out
}

func compareTotals(cur, prev domain.SalesTotals, curExp, prevExp domain.ExpenseTotals) domain.ComparisonSet {
	return domain.ComparisonSet{
		Transactions:  Compare(float64(cur.Transactions), float64(prev.Transactions)),
		Units:         Compare(float64(cur.Units), float64(prev.Units)),
		Revenue:       Compare(cur.Revenue, prev.Revenue),
		AverageTicket: Compare(cur.AverageTicket, prev.AverageTicket),
		Products:      Compare(float64(cur.DistinctProducts), float64(prev.DistinctProducts)),
		Expenses:      Compare(curExp.Amount, prevExp.Amount),
		NetProfit:     Compare(cur.Revenue-curExp.Amount, prev.Revenue-prevExp.Amount),
	}
}

func previousPeriod(cur, prev domain.SalesTotals, curExp, prevExp domain.ExpenseTotals) domain.PreviousPeriod {
	return domain.PreviousPeriod{
		Transactions:  prev.Transactions,
		Units:         prev.Units,
		Revenue:       round2(prev.Revenue),
		AverageTicket: round2(prev.AverageTicket),
		Expenses:      round2(prevExp.Amount),
		Variations:    compareTotals(cur, prev, curExp, prevExp),
	}
}

func share(part float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round2(part / total * 100)
}

func average(sum float64, count int64) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
