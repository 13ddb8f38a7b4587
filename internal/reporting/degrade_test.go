package reporting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/store"
	"cafeteria/backend/internal/store/memory"
)

// flakyStore fails the named aggregate and delegates everything else.
type flakyStore struct {
	store.ReportStore
	failing string
	err     error
}

func (f *flakyStore) fail(name string) error {
	if f.failing == name {
		return f.err
	}
	return nil
}

func (f *flakyStore) SalesTotals(ctx context.Context, r domain.DateRange) (domain.SalesTotals, error) {
	if err := f.fail("SalesTotals"); err != nil {
		return domain.SalesTotals{}, err
	}
	return f.ReportStore.SalesTotals(ctx, r)
}

func (f *flakyStore) ProductSales(ctx context.Context, r domain.DateRange, includeUnsold bool) ([]domain.ProductAggregate, error) {
	if err := f.fail("ProductSales"); err != nil {
		return nil, err
	}
	return f.ReportStore.ProductSales(ctx, r, includeUnsold)
}

func (f *flakyStore) HourlySales(ctx context.Context, r domain.DateRange) ([]domain.HourAggregate, error) {
	if err := f.fail("HourlySales"); err != nil {
		return nil, err
	}
	return f.ReportStore.HourlySales(ctx, r)
}

func seededStore(t *testing.T) *memory.Store {
	f := newFixture(t)
	id := f.product("Tinto", "Bebidas", 1500)
	f.sale(id, 2, 1500, "2024-03-10", "07:00:00")
	return f.store
}

func TestDashboardDegradesFailingSections(t *testing.T) {
	st := &flakyStore{ReportStore: seededStore(t), failing: "ProductSales", err: errors.New("syntax error at or near")}
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	e := NewEngine(st, Options{Location: time.UTC}, zerolog.Nop(), metrics).
		WithClock(func() time.Time { return at("2024-03-10", 9) })

	d, err := e.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"topProductos", "ventasPorCategoria"}, d.Degraded)
	assert.NotNil(t, d.TopProducts)
	assert.Empty(t, d.TopProducts)
	assert.Empty(t, d.Categories)
	assert.Equal(t, 3000.0, d.Today.Revenue)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.degraded.WithLabelValues("dashboard", "topProductos")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reports.WithLabelValues("dashboard", "success")))
}

func TestUnavailableStoreFailsReport(t *testing.T) {
	st := &flakyStore{
		ReportStore: seededStore(t),
		failing:     "SalesTotals",
		err:         fmt.Errorf("dial tcp: %w", store.ErrUnavailable),
	}
	e := engineFor(st, at("2024-03-10", 9))

	_, err := e.Dashboard(context.Background())
	assert.ErrorIs(t, err, store.ErrUnavailable)

	_, err = e.Weekly(context.Background(), at("2024-03-10", 0))
	assert.ErrorIs(t, err, store.ErrUnavailable)

	_, err = e.Comparative(context.Background(), domain.ComparativeWeekly)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestTrendsDegradesPeakHours(t *testing.T) {
	st := &flakyStore{ReportStore: seededStore(t), failing: "HourlySales", err: errors.New("boom")}
	tr, err := engineFor(st, at("2024-03-10", 9)).Trends(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"horasPico"}, tr.Degraded)
	assert.Empty(t, tr.PeakHours)
	assert.Equal(t, "Sin datos", tr.Insights.PeakHour)
	assert.Equal(t, "Tinto", tr.Insights.StarProduct)
}

func TestCanceledContextFailsReport(t *testing.T) {
	st := &flakyStore{ReportStore: seededStore(t), failing: "SalesTotals", err: context.Canceled}
	_, err := engineFor(st, at("2024-03-10", 9)).DailySnapshot(context.Background(), at("2024-03-10", 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.SectionDegraded("dashboard", "hoy")
	m.ObserveReport("dashboard", 0, nil)
}

func TestStatisticsReportsDegradedSections(t *testing.T) {
	st := &flakyStore{ReportStore: seededStore(t), failing: "ProductSales", err: errors.New("relation does not exist")}
	e := engineFor(st, at("2024-03-10", 9))

	stats, err := e.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"productos"}, stats.Degraded)
	assert.Zero(t, stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.Transactions)
}
