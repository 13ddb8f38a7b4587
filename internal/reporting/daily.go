package reporting

import (
	"context"
	"time"

	"cafeteria/backend/internal/domain"
)

// statisticsEpoch bounds the all-time statistics range.
var statisticsEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func (e *Engine) DailySnapshot(ctx context.Context, date time.Time) (domain.DailySnapshot, error) {
	day := domain.SingleDay(date)
	run := e.begin(ctx, "diario")

	var totals domain.SalesTotals
	var expenses domain.ExpenseTotals
	run.section("ventas", func(ctx context.Context) error {
		t, err := e.store.SalesTotals(ctx, day)
		if err != nil {
			return err
		}
		totals = t
		return nil
	})
	run.section("gastos", func(ctx context.Context) error {
		t, err := e.store.ExpenseTotals(ctx, day)
		if err != nil {
			return err
		}
		expenses = t
		return nil
	})

	degraded, err := run.wait()
	if err != nil {
		return domain.DailySnapshot{}, err
	}
	snapshot := snapshotOf(day.FromDate(), totals, expenses)
	snapshot.Degraded = degraded
	snapshot.Timestamp = e.now()
	return snapshot, nil
}

func snapshotOf(date string, totals domain.SalesTotals, expenses domain.ExpenseTotals) domain.DailySnapshot {
	return domain.DailySnapshot{
		Date:             date,
		Transactions:     totals.Transactions,
		Units:            totals.Units,
		Revenue:          round2(totals.Revenue),
		DistinctProducts: totals.DistinctProducts,
		AverageTicket:    round2(totals.AverageTicket),
		MinSale:          round2(totals.MinSale),
		MaxSale:          round2(totals.MaxSale),
		FirstSale:        totals.FirstSale,
		LastSale:         totals.LastSale,
		Expenses:         round2(expenses.Amount),
		ExpenseRecords:   expenses.Count,
		NetProfit:        round2(totals.Revenue - expenses.Amount),
	}
}

// DailyProducts breaks a single day down by product, best sellers first.
func (e *Engine) DailyProducts(ctx context.Context, date time.Time) (domain.DailyProductReport, error) {
	day := domain.SingleDay(date)
	run := e.begin(ctx, "diario_productos")

	report := domain.DailyProductReport{
		Date:     day.FromDate(),
		Products: []domain.RankedProduct{},
	}
	var totals domain.SalesTotals
	var expenses domain.ExpenseTotals
	run.section("productos", func(ctx context.Context) error {
		rows, err := e.store.ProductSales(ctx, day, false)
		if err != nil {
			return err
		}
		report.Products = RankProducts(rows, 0)
		return nil
	})
	run.section("ventas", func(ctx context.Context) error {
		t, err := e.store.SalesTotals(ctx, day)
		if err != nil {
			return err
		}
		totals = t
		return nil
	})
	run.section("gastos", func(ctx context.Context) error {
		t, err := e.store.ExpenseTotals(ctx, day)
		if err != nil {
			return err
		}
		expenses = t
		return nil
	})

	degraded, err := run.wait()
	if err != nil {
		return domain.DailyProductReport{}, err
	}
	report.Totals = snapshotOf(day.FromDate(), totals, expenses)
	report.Totals.Degraded = degraded
	report.Timestamp = e.now()
	report.Totals.Timestamp = report.Timestamp
	return report, nil
}

// Statistics summarises every sale and active expense on record.
func (e *Engine) Statistics(ctx context.Context) (domain.Statistics, error) {
	all := domain.NewDateRange(statisticsEpoch, e.Today())
	run := e.begin(ctx, "estadisticas")

	var stats domain.Statistics
	run.section("ventas", func(ctx context.Context) error {
		t, err := e.store.SalesTotals(ctx, all)
		if err != nil {
			return err
		}
		stats.Transactions = t.Transactions
		stats.Units = t.Units
		stats.Revenue = round2(t.Revenue)
		stats.AverageSale = round2(t.AverageTicket)
		stats.MinSale = round2(t.MinSale)
		stats.MaxSale = round2(t.MaxSale)
		stats.DaysWithSales = t.DaysWithSales
		return nil
	})
	var expenses domain.ExpenseTotals
	run.section("gastos", func(ctx context.Context) error {
		t, err := e.store.ExpenseTotals(ctx, all)
		if err != nil {
			return err
		}
		expenses = t
		return nil
	})
	run.section("productos", func(ctx context.Context) error {
		rows, err := e.store.ProductSales(ctx, domain.SingleDay(e.Today()), true)
		if err != nil {
			return err
		}
		stats.ActiveProducts = int64(len(rows))
		return nil
	})

	degraded, err := run.wait()
	if err != nil {
		return domain.Statistics{}, err
	}
	stats.Degraded = degraded
	stats.Expenses = round2(expenses.Amount)
	stats.ExpenseRecords = expenses.Count
	stats.NetProfit = round2(stats.Revenue - expenses.Amount)
	stats.Timestamp = e.now()
	return stats, nil
}
