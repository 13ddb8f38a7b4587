package reporting

import (
	"context"
	"fmt"

	"cafeteria/backend/internal/domain"
)

// Dashboard compares today with yesterday and adds the month's best sellers,
// today's hourly histogram, the recent daily trend and category shares.
func (e *Engine) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	today := e.Today()
	yesterday := today.AddDate(0, 0, -1)
	topWindow := e.topProductsWindow()
	trendWindow := daysBack(today, e.opts.TrendWindowDays)
	categoryWindow := daysBack(today, e.opts.CategoryWindowDays)

	run := e.begin(ctx, "dashboard")
	out := domain.Dashboard{
		TopProducts: []domain.RankedProduct{},
		HourlySales: []domain.HourBucket{},
		Trend:       []domain.DayBucket{},
		Categories:  []domain.CategorySummary{},
	}

	var todaySales, yesterdaySales domain.SalesTotals
	var todayExpenses, yesterdayExpenses domain.ExpenseTotals
	run.section("hoy", func(ctx context.Context) error {
		t, err := e.store.SalesTotals(ctx, domain.SingleDay(today))
		if err != nil {
			return err
		}
		todaySales = t
		return nil
	})
	run.section("gastos_hoy", func(ctx context.Context) error {
		t, err := e.store.ExpenseTotals(ctx, domain.SingleDay(today))
		if err != nil {
			return err
		}
		todayExpenses = t
		return nil
	})
	run.section("ayer", func(ctx context.Context) error {
		t, err := e.store.SalesTotals(ctx, domain.SingleDay(yesterday))
		if err != nil {
			return err
		}
		yesterdaySales = t
		return nil
	})
	run.section("gastos_ayer", func(ctx context.Context) error {
		t, err := e.store.ExpenseTotals(ctx, domain.SingleDay(yesterday))
		if err != nil {
			return err
		}
		yesterdayExpenses = t
		return nil
	})
	run.section("topProductos", func(ctx context.Context) error {
		rows, err := e.store.ProductSales(ctx, topWindow, false)
		if err != nil {
			return err
		}
		out.TopProducts = RankProducts(rows, e.opts.TopProductsLimit)
		return nil
	})
	run.section("ventasPorHora", func(ctx context.Context) error {
		rows, err := e.store.HourlySales(ctx, domain.SingleDay(today))
		if err != nil {
			return err
		}
		out.HourlySales = hourBuckets(rows)
		return nil
	})
	run.section("tendencia", func(ctx context.Context) error {
		sales, err := e.store.DailySales(ctx, trendWindow)
		if err != nil {
			return err
		}
		expenses, err := e.store.DailyExpenses(ctx, trendWindow)
		if err != nil {
			return err
		}
		out.Trend = fillDays(trendWindow, sales, expenses)
		return nil
	})
	run.section("ventasPorCategoria", func(ctx context.Context) error {
		rows, err := e.store.ProductSales(ctx, categoryWindow, false)
		if err != nil {
			return err
		}
		out.Categories = RankCategories(rows, e.opts.CategoryEmoji)
		return nil
	})

	degraded, err := run.wait()
	if err != nil {
		return domain.Dashboard{}, err
	}

	out.Today = snapshotOf(today.Format(domain.DateLayout), todaySales, todayExpenses)
	out.Yesterday = domain.DayTotals{
		Transactions: yesterdaySales.Transactions,
		Units:        yesterdaySales.Units,
		Revenue:      round2(yesterdaySales.Revenue),
		Expenses:     round2(yesterdayExpenses.Amount),
		NetProfit:    round2(yesterdaySales.Revenue - yesterdayExpenses.Amount),
	}
	out.Comparison = compareTotals(todaySales, yesterdaySales, todayExpenses, yesterdayExpenses)
	out.Degraded = degraded
	out.Timestamp = e.now()
	out.Today.Timestamp = out.Timestamp
	out.Metadata = domain.ReportMetadata{
		BusinessName:      e.opts.BusinessName,
		Timezone:          e.opts.Location.String(),
		OperatingHours:    e.operatingHoursLabel(),
		TopProductsPeriod: fmt.Sprintf("%s a %s", topWindow.FromDate(), topWindow.ToDate()),
		GeneratedAt:       out.Timestamp,
	}
	return out, nil
}

// topProductsWindow is month to date unless a fixed trailing window is set.
func (e *Engine) topProductsWindow() domain.DateRange {
	today := e.Today()
	if e.opts.TopProductsWindowDays > 0 {
		return daysBack(today, e.opts.TopProductsWindowDays)
	}
	first := today.AddDate(0, 0, -(today.Day() - 1))
	return domain.NewDateRange(first, today)
}

func (e *Engine) operatingHoursLabel() string {
	return fmt.Sprintf("%s - %s", clockLabel(e.opts.OperatingHourStart), clockLabel(e.opts.OperatingHourEnd))
}

func clockLabel(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}
