package reporting

import (
	"context"
	"time"

	"cafeteria/backend/internal/domain"
)

// periodData is what weekly and monthly reports load for their window and the
// one before it.
type periodData struct {
	days        []domain.DayBucket
	products    []domain.ProductAggregate
	hours       []domain.HourAggregate
	totals      domain.SalesTotals
	expenses    domain.ExpenseTotals
	prevTotals  domain.SalesTotals
	prevExpense domain.ExpenseTotals
}

func (e *Engine) loadPeriod(run *run, cur, prev domain.DateRange, withHours bool) *periodData {
	data := &periodData{days: []domain.DayBucket{}}

	run.section("ventasPorDia", func(ctx context.Context) error {
		sales, err := e.store.DailySales(ctx, cur)
		if err != nil {
			return err
		}
		expenses, err := e.store.DailyExpenses(ctx, cur)
		if err != nil {
			return err
		}
		data.days = dayBuckets(sales, expenses)
		return nil
	})
	run.section("totales", func(ctx context.Context) error {
		t, err := e.store.SalesTotals(ctx, cur)
		if err != nil {
			return err
		}
		data.totals = t
		return nil
	})
	run.section("gastos", func(ctx context.Context) error {
		t, err := e.store.ExpenseTotals(ctx, cur)
		if err != nil {
			return err
		}
		data.expenses = t
		return nil
	})
	run.section("productos", func(ctx context.Context) error {
		rows, err := e.store.ProductSales(ctx, cur, false)
		if err != nil {
			return err
		}
		data.products = rows
		return nil
	})
	if withHours {
		run.section("horariosPico", func(ctx context.Context) error {
			rows, err := e.store.HourlySales(ctx, cur)
			if err != nil {
				return err
			}
			data.hours = rows
			return nil
		})
	}
	run.section("periodoAnterior", func(ctx context.Context) error {
		t, err := e.store.SalesTotals(ctx, prev)
		if err != nil {
			return err
		}
		data.prevTotals = t
		return nil
	})
	run.section("gastosPeriodoAnterior", func(ctx context.Context) error {
		t, err := e.store.ExpenseTotals(ctx, prev)
		if err != nil {
			return err
		}
		data.prevExpense = t
		return nil
	})
	return data
}

// Weekly covers the seven days ending at ref and compares them with the seven
// days before.
func (e *Engine) Weekly(ctx context.Context, ref time.Time) (domain.WeeklyReport, error) {
	cur := daysBack(ref, 7)
	prev := daysBack(cur.From.AddDate(0, 0, -1), 7)

	run := e.begin(ctx, "semanal")
	data := e.loadPeriod(run, cur, prev, true)
	degraded, err := run.wait()
	if err != nil {
		return domain.WeeklyReport{}, err
	}

	return domain.WeeklyReport{
		Period:       periodOf(cur),
		DailySales:   data.days,
		TopProducts:  RankProducts(data.products, periodTopLimit),
		PeakHours:    byTransactions(hourBuckets(data.hours)),
		PreviousWeek: previousPeriod(data.totals, data.prevTotals, data.expenses, data.prevExpense),
		Summary:      summarize(data.days, data.totals, data.expenses),
		Degraded:     degraded,
		Timestamp:    e.now(),
	}, nil
}

// Monthly covers one calendar month. Zero month or year default to the
// current ones.
func (e *Engine) Monthly(ctx context.Context, month int, year int) (domain.MonthlyReport, error) {
	today := e.Today()
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}
	cur := monthRange(year, time.Month(month), e.opts.Location)
	prev := monthRange(cur.From.AddDate(0, -1, 0).Year(), cur.From.AddDate(0, -1, 0).Month(), e.opts.Location)

	run := e.begin(ctx, "mensual")
	data := e.loadPeriod(run, cur, prev, false)
	degraded, err := run.wait()
	if err != nil {
		return domain.MonthlyReport{}, err
	}

	period := periodOf(cur)
	period.Month = month
	period.Year = year
	period.MonthName = MonthName(time.Month(month))

	return domain.MonthlyReport{
		Period:        period,
		DailySales:    data.days,
		TopProducts:   RankProducts(data.products, periodTopLimit),
		Categories:    RankCategories(data.products, e.opts.CategoryEmoji),
		PreviousMonth: previousPeriod(data.totals, data.prevTotals, data.expenses, data.prevExpense),
		Summary:       summarize(data.days, data.totals, data.expenses),
		Degraded:      degraded,
		Timestamp:     e.now(),
	}, nil
}
