package reporting

import (
	"cmp"
	"context"
	"slices"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/recommendation"
)

// Predictions projects the mean of recent sale days forward by a week and a
// month. The mean uses the trailing 30 days, or the trailing 7 when fewer
// than ForecastMinDays of those had sales. Weekday averages are reported
// alongside and never folded into the projection.
func (e *Engine) Predictions(ctx context.Context) (domain.Predictions, error) {
	today := e.Today()
	long := daysBack(today, forecastLongWindow)
	short := daysBack(today, forecastShortWindow)
	priorShort := daysBack(short.From.AddDate(0, 0, -1), forecastShortWindow)

	run := e.begin(ctx, "predicciones")
	out := domain.Predictions{
		WeekdayTendency: []domain.WeekdayBucket{},
		Products:        []domain.ProductForecast{},
	}

	var sales []domain.DayAggregate
	var expenses []domain.DayExpense
	run.section("promedios", func(ctx context.Context) error {
		s, err := e.store.DailySales(ctx, long)
		if err != nil {
			return err
		}
		x, err := e.store.DailyExpenses(ctx, long)
		if err != nil {
			return err
		}
		sales, expenses = s, x
		return nil
	})
	run.section("tendenciaDiaSemana", func(ctx context.Context) error {
		rows, err := e.store.DailySales(ctx, daysBack(today, weekdayWindowDays))
		if err != nil {
			return err
		}
		out.WeekdayTendency = weekdayBuckets(rows)
		return nil
	})
	run.section("productos", func(ctx context.Context) error {
		rows, err := e.store.ProductSales(ctx, long, false)
		if err != nil {
			return err
		}
		out.Products = productForecasts(rows)
		return nil
	})
	var recent, prior domain.SalesTotals
	run.section("ultimaSemana", func(ctx context.Context) error {
		r, err := e.store.SalesTotals(ctx, short)
		if err != nil {
			return err
		}
		p, err := e.store.SalesTotals(ctx, priorShort)
		if err != nil {
			return err
		}
		recent, prior = r, p
		return nil
	})

	degraded, err := run.wait()
	if err != nil {
		return domain.Predictions{}, err
	}

	window := long
	if len(sales) < e.opts.ForecastMinDays {
		window = short
	}
	out.Window, out.DailyAverages = dailyAverages(window, sales, expenses)
	out.Projections = project(out.DailyAverages)
	out.Recommendations = recommendation.Evaluate(recommendation.ForecastRules, recommendation.ForecastInput{
		Averages:                out.DailyAverages,
		Projections:             out.Projections,
		LowTransactionThreshold: e.opts.LowTransactionThreshold,
		RecentRevenueVariation:  Variation(recent.Revenue, prior.Revenue),
		HasRecentHistory:        prior.Revenue > 0,
	})
	out.Degraded = degraded
	out.Timestamp = e.now()
	return out, nil
}

// dailyAverages takes the mean over the days of window that had sales.
// Expenses count only when booked on one of those days.
func dailyAverages(window domain.DateRange, sales []domain.DayAggregate, expenses []domain.DayExpense) (domain.ForecastWindow, domain.DailyAverages) {
	expenseByDate := make(map[string]float64, len(expenses))
	for _, x := range expenses {
		expenseByDate[x.Date] += x.Amount
	}

	var days int64
	var revenue, units, transactions, spent float64
	for _, day := range sales {
		if !window.Contains(day.Date) {
			continue
		}
		days++
		revenue += day.Revenue
		units += float64(day.Units)
		transactions += float64(day.Transactions)
		spent += expenseByDate[day.Date]
	}

	w := domain.ForecastWindow{
		Days:          window.Days(),
		From:          window.FromDate(),
		To:            window.ToDate(),
		DaysWithSales: days,
	}
	if days == 0 {
		return w, domain.DailyAverages{}
	}
	n := float64(days)
	return w, domain.DailyAverages{
		Revenue:      round2(revenue / n),
		Units:        round2(units / n),
		Transactions: round2(transactions / n),
		Expenses:     round2(spent / n),
		NetProfit:    round2((revenue - spent) / n),
	}
}

func project(avg domain.DailyAverages) domain.Projections {
	return domain.Projections{
		RevenueWeek:       Project(avg.Revenue, 7),
		UnitsWeek:         Project(avg.Units, 7),
		TransactionsWeek:  Project(avg.Transactions, 7),
		ExpensesWeek:      Project(avg.Expenses, 7),
		ProfitWeek:        Project(avg.NetProfit, 7),
		RevenueMonth:      Project(avg.Revenue, 30),
		UnitsMonth:        Project(avg.Units, 30),
		TransactionsMonth: Project(avg.Transactions, 30),
		ExpensesMonth:     Project(avg.Expenses, 30),
		ProfitMonth:       Project(avg.NetProfit, 30),
	}
}

// productForecasts projects each product's units per selling day, highest
// volume first.
func productForecasts(rows []domain.ProductAggregate) []domain.ProductForecast {
	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b domain.ProductAggregate) int {
		if c := cmp.Compare(b.Units, a.Units); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if len(sorted) > productForecastMax {
		sorted = sorted[:productForecastMax]
	}

	out := make([]domain.ProductForecast, 0, len(sorted))
	for _, row := range sorted {
		avg := round2(average(float64(row.Units), row.DaysSold))
		out = append(out, domain.ProductForecast{
			ProductID:     row.ProductID,
			Name:          row.Name,
			Category:      row.Category,
			Units:         row.Units,
			DaysSold:      row.DaysSold,
			AvgDailyUnits: avg,
			WeekUnits:     Project(avg, 7),
			MonthUnits:    Project(avg, 30),
			Frequency:     ClassifyFrequency(row.DaysSold),
		})
	}
	return out
}
