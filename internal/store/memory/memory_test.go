package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/store"
)

func day(d int) domain.DateRange {
	return domain.SingleDay(time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC))
}

func addSale(t *testing.T, s *Store, productID int64, qty int, price int64, date string, at string) *domain.Sale {
	t.Helper()
	unit := decimal.NewFromInt(price)
	sale, err := s.CreateSale(context.Background(), domain.Sale{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: unit,
		Total:     domain.SaleTotal(unit, qty),
		SaleDate:  date,
		SaleTime:  at,
	})
	require.NoError(t, err)
	return sale
}

func TestCreateProductRejectsDuplicateName(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	_, err := s.CreateProduct(ctx, domain.Product{Name: "Merengón", Price: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, store.ErrConflict)

	created, err := s.CreateProduct(ctx, domain.Product{Name: "Tinto", Price: decimal.NewFromInt(1200)})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategory, created.Category)
	assert.True(t, created.Active)
}

func TestDeactivatedProductsAreHiddenAndNotUpdatable(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	_, err := s.DeactivateProduct(ctx, 1)
	require.NoError(t, err)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	for _, p := range products {
		assert.NotEqual(t, int64(1), p.ID)
	}

	_, err = s.UpdateProduct(ctx, domain.Product{ID: 1, Name: "Merengón", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteProductRefusesWhenSalesReferenceIt(t *testing.T) {
	s := NewSeeded()
	addSale(t, s, 1, 1, 3500, "2024-03-01", "08:00:00")

	_, err := s.DeleteProduct(context.Background(), 1)
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.DeleteProduct(context.Background(), 2)
	assert.NoError(t, err)
}

func TestSalesTotalsForEmptyDayAreZero(t *testing.T) {
	s := NewSeeded()

	totals, err := s.SalesTotals(context.Background(), day(1))
	require.NoError(t, err)
	assert.Equal(t, domain.SalesTotals{}, totals)
}

func TestAggregatesGroupByDayHourAndProduct(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	addSale(t, s, 1, 2, 3500, "2024-03-01", "07:10:00")
	addSale(t, s, 2, 1, 2800, "2024-03-01", "07:45:00")
	addSale(t, s, 1, 1, 3500, "2024-03-02", "10:05:00")
	_, err := s.CreateExpense(ctx, domain.Expense{Concept: "Leche", Amount: decimal.NewFromInt(5000), ExpenseDate: "2024-03-01"})
	require.NoError(t, err)

	week := domain.NewDateRange(day(1).From, day(7).From)

	totals, err := s.SalesTotals(ctx, day(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Transactions)
	assert.Equal(t, int64(3), totals.Units)
	assert.InDelta(t, 9800, totals.Revenue, 0.001)
	assert.Equal(t, "07:10:00", totals.FirstSale)
	assert.Equal(t, "07:45:00", totals.LastSale)
	assert.InDelta(t, 2800, totals.MinSale, 0.001)
	assert.InDelta(t, 7000, totals.MaxSale, 0.001)

	days, err := s.DailySales(ctx, week)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Date)
	assert.Equal(t, int64(2), days[0].DistinctProducts)

	hours, err := s.HourlySales(ctx, week)
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Equal(t, 7, hours[0].Hour)
	assert.Equal(t, int64(2), hours[0].Transactions)

	products, err := s.ProductSales(ctx, week, false)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(2), products[0].DaysSold)

	withUnsold, err := s.ProductSales(ctx, week, true)
	require.NoError(t, err)
	assert.Len(t, withUnsold, 5)

	expenses, err := s.ExpenseTotals(ctx, week)
	require.NoError(t, err)
	assert.InDelta(t, 5000, expenses.Amount, 0.001)
	assert.Equal(t, int64(1), expenses.Count)
}

func TestDeactivatedExpensesLeaveTotals(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, err := s.CreateExpense(ctx, domain.Expense{Concept: "Gas", Amount: decimal.NewFromInt(3000), ExpenseDate: "2024-03-01"})
	require.NoError(t, err)

	_, err = s.DeactivateExpense(ctx, created.ID)
	require.NoError(t, err)
	_, err = s.DeactivateExpense(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	totals, err := s.ExpenseTotals(ctx, day(1))
	require.NoError(t, err)
	assert.Zero(t, totals.Amount)
}
