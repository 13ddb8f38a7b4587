package reporting

import (
	"cmp"
	"context"
	"slices"
	"time"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/recommendation"
)

// Trends looks back over the current and two previous calendar months for the
// quarterly view, and over the trailing 30 days for categories, hours and
// products.
func (e *Engine) Trends(ctx context.Context) (domain.Trends, error) {
	today := e.Today()
	quarter := domain.NewDateRange(time.Date(today.Year(), today.Month()-2, 1, 0, 0, 0, 0, e.opts.Location), today)
	recent := daysBack(today, trendsWindowDays)

	run := e.begin(ctx, "tendencias")
	out := domain.Trends{
		Quarterly:       []domain.MonthBucket{},
		Categories:      []domain.CategorySummary{},
		PeakHours:       []domain.HourBucket{},
		ProductClasses:  []domain.ProductClass{},
		WeekdayPatterns: []domain.WeekdayBucket{},
	}

	run.section("tendenciaTrimestral", func(ctx context.Context) error {
		rows, err := e.store.MonthlySales(ctx, quarter)
		if err != nil {
			return err
		}
		out.Quarterly = monthBuckets(rows)
		return nil
	})
	run.section("productos", func(ctx context.Context) error {
		rows, err := e.store.ProductSales(ctx, recent, true)
		if err != nil {
			return err
		}
		out.Categories = RankCategories(rows, e.opts.CategoryEmoji)
		for i := range out.Categories {
			out.Categories[i].Performance = ClassifyCategory(out.Categories[i].Revenue)
		}
		out.ProductClasses = productClasses(rows)
		return nil
	})
	run.section("horasPico", func(ctx context.Context) error {
		rows, err := e.store.HourlySales(ctx, recent)
		if err != nil {
			return err
		}
		open := make([]domain.HourAggregate, 0, len(rows))
		for _, row := range rows {
			if row.Hour >= e.opts.OperatingHourStart && row.Hour < e.opts.OperatingHourEnd {
				open = append(open, row)
			}
		}
		out.PeakHours = byTransactions(hourBuckets(open))
		return nil
	})
	run.section("patronesSemanales", func(ctx context.Context) error {
		rows, err := e.store.DailySales(ctx, daysBack(today, weekdayWindowDays))
		if err != nil {
			return err
		}
		out.WeekdayPatterns = weekdayBuckets(rows)
		return nil
	})

	degraded, err := run.wait()
	if err != nil {
		return domain.Trends{}, err
	}

	out.Insights = trendInsights(out)
	in := recommendation.TrendInput{Insights: out.Insights}
	if len(out.PeakHours) > 0 {
		in.PeakHour, in.HasPeakHour = out.PeakHours[0].Hour, true
	}
	for _, p := range out.ProductClasses {
		if p.Units < 10 {
			in.SlowProducts++
		}
	}
	if n := len(out.Quarterly); n > 1 {
		in.LastMonthTrend, in.HasLastMonth = out.Quarterly[n-1].Trend, true
	}
	out.Recommendations = recommendation.Evaluate(recommendation.TrendRules, in)
	out.Degraded = degraded
	out.Timestamp = e.now()
	return out, nil
}

// monthBuckets compares each month with the one before it. The first month
// has nothing to compare against and is reported as stable.
func monthBuckets(rows []domain.MonthAggregate) []domain.MonthBucket {
	out := make([]domain.MonthBucket, 0, len(rows))
	for i, row := range rows {
		b := domain.MonthBucket{
			Month:            row.Month,
			Transactions:     row.Transactions,
			Units:            row.Units,
			Revenue:          round2(row.Revenue),
			AverageTicket:    round2(row.AverageTicket),
			DistinctProducts: row.DistinctProducts,
			ActiveDays:       row.ActiveDays,
			AvgDailyRevenue:  round2(average(row.Revenue, row.ActiveDays)),
			Trend:            domain.TrendStable,
		}
		if t, err := time.Parse("2006-01", row.Month); err == nil {
			b.MonthName = MonthName(t.Month())
		}
		if i > 0 {
			b.Variation = Variation(row.Revenue, rows[i-1].Revenue)
			b.Trend = TrendBucket(b.Variation)
		}
		out = append(out, b)
	}
	return out
}

// productClasses labels every product by units sold, best sellers first.
func productClasses(rows []domain.ProductAggregate) []domain.ProductClass {
	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b domain.ProductAggregate) int {
		if c := cmp.Compare(b.Units, a.Units); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	out := make([]domain.ProductClass, 0, len(sorted))
	for _, row := range sorted {
		out = append(out, domain.ProductClass{
			ProductID: row.ProductID,
			Name:      row.Name,
			Category:  row.Category,
			Units:     row.Units,
			Revenue:   round2(row.Revenue),
			DaysSold:  row.DaysSold,
			Class:     ClassifyProduct(row.Units),
		})
	}
	return out
}

func trendInsights(t domain.Trends) domain.TrendInsights {
	in := domain.TrendInsights{
		BestCategory: recommendation.NoData,
		PeakHour:     recommendation.NoData,
		StarProduct:  recommendation.NoData,
		BestDay:      recommendation.NoData,
	}
	if len(t.Categories) > 0 && t.Categories[0].Revenue > 0 {
		in.BestCategory = t.Categories[0].Category
	}
	if len(t.PeakHours) > 0 {
		in.PeakHour = t.PeakHours[0].Label
	}
	if len(t.ProductClasses) > 0 && t.ProductClasses[0].Units > 0 {
		in.StarProduct = t.ProductClasses[0].Name
	}
	var best *domain.WeekdayBucket
	for i := range t.WeekdayPatterns {
		if best == nil || t.WeekdayPatterns[i].AvgDailyRevenue > best.AvgDailyRevenue {
			best = &t.WeekdayPatterns[i]
		}
	}
	if best != nil {
		in.BestDay = best.DayName
	}
	return in
}
