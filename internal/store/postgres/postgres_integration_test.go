package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cafeteria/backend/internal/domain"
)

func TestSaleRoundTripAffectsDailyTotals(t *testing.T) {
	databaseURL := os.Getenv("CAFETERIA_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set CAFETERIA_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL, zerolog.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stamp := time.Now().UnixNano()
	product, err := s.CreateProduct(ctx, domain.Product{
		Name:     fmt.Sprintf("Producto IT %d", stamp),
		Category: "Pruebas",
		Price:    decimal.NewFromInt(2500),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM ventas WHERE producto_id = $1`, product.ID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM productos WHERE id = $1`, product.ID)
	})

	// A date far in the past keeps the assertions independent of other rows.
	day := time.Date(1999, time.January, 1+int(stamp%28), 0, 0, 0, 0, time.UTC)
	r := domain.SingleDay(day)
	before, err := s.SalesTotals(ctx, r)
	if err != nil {
		t.Fatalf("totals before: %v", err)
	}

	sale, err := s.CreateSale(ctx, domain.Sale{
		ProductID: product.ID,
		Quantity:  3,
		UnitPrice: product.Price,
		Total:     domain.SaleTotal(product.Price, 3),
		SaleDate:  r.FromDate(),
		SaleTime:  "08:30:00",
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !sale.Total.Equal(decimal.NewFromInt(7500)) {
		t.Fatalf("expected total 7500, got %s", sale.Total)
	}

	during, err := s.SalesTotals(ctx, r)
	if err != nil {
		t.Fatalf("totals during: %v", err)
	}
	if during.Revenue-before.Revenue != 7500 {
		t.Fatalf("expected revenue to grow by 7500, got %.2f -> %.2f", before.Revenue, during.Revenue)
	}

	if _, err := s.DeleteSale(ctx, sale.ID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	after, err := s.SalesTotals(ctx, r)
	if err != nil {
		t.Fatalf("totals after: %v", err)
	}
	if after.Revenue != before.Revenue || after.Transactions != before.Transactions {
		t.Fatalf("expected totals restored after delete, got %+v", after)
	}
}
