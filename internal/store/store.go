package store

import (
	"context"
	"errors"

	"cafeteria/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	// ErrUnavailable marks connectivity failures. Reports surface it as a
	// request error instead of degrading the affected section.
	ErrUnavailable = errors.New("store unavailable")
)

type Repository interface {
	Ping(ctx context.Context) error

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id int64) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*domain.Product, error)
	CountSalesByProduct(ctx context.Context, productID int64) (int64, error)

	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	DeleteSale(ctx context.Context, id int64) (*domain.Sale, error)

	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	DeactivateExpense(ctx context.Context, id int64) (*domain.Expense, error)
}

// ReportStore exposes read-only aggregates over the sale and expense ledgers.
// Every range is inclusive on both ends and empty ranges yield zero values.
type ReportStore interface {
	SalesTotals(ctx context.Context, r domain.DateRange) (domain.SalesTotals, error)
	ExpenseTotals(ctx context.Context, r domain.DateRange) (domain.ExpenseTotals, error)
	DailySales(ctx context.Context, r domain.DateRange) ([]domain.DayAggregate, error)
	DailyExpenses(ctx context.Context, r domain.DateRange) ([]domain.DayExpense, error)
	HourlySales(ctx context.Context, r domain.DateRange) ([]domain.HourAggregate, error)
	MonthlySales(ctx context.Context, r domain.DateRange) ([]domain.MonthAggregate, error)
	// ProductSales groups sales by product. With includeUnsold every active
	// product is returned, including those without sales in the range.
	ProductSales(ctx context.Context, r domain.DateRange, includeUnsold bool) ([]domain.ProductAggregate, error)
}
