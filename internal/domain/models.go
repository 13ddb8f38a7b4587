package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	DefaultCategory = "General"
)

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"nombre"`
	Category  string          `json:"categoria"`
	Price     decimal.Decimal `json:"precio"`
	Active    bool            `json:"activo"`
	CreatedAt time.Time       `json:"fecha_creacion"`
	UpdatedAt time.Time       `json:"fecha_actualizacion"`
}

type ProductCreateRequest struct {
	Name     string           `json:"nombre" validate:"required,max=100"`
	Category string           `json:"categoria" validate:"max=60"`
	Price    *decimal.Decimal `json:"precio" validate:"required"`
}

type ProductUpdateRequest struct {
	Name     *string          `json:"nombre,omitempty" validate:"omitempty,max=100"`
	Category *string          `json:"categoria,omitempty" validate:"omitempty,max=60"`
	Price    *decimal.Decimal `json:"precio,omitempty"`
}

// ProductDeleteResult tells whether the product row was removed or only
// deactivated because sales still reference it.
type ProductDeleteResult struct {
	Message     string  `json:"message"`
	Deactivated bool    `json:"desactivado"`
	Product     Product `json:"producto"`
}

// Sale is an immutable ledger entry. UnitPrice is captured at creation time
// and Total is stored redundantly so later price changes never rewrite history.
type Sale struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"producto_id"`
	ProductName string          `json:"producto_nombre,omitempty"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precio_unitario"`
	Total       decimal.Decimal `json:"total"`
	SaleDate    string          `json:"fecha_venta"`
	SaleTime    string          `json:"hora_venta"`
	CreatedAt   time.Time       `json:"fecha_creacion"`
}

// SaleCreateRequest leaves Quantity nil when cantidad is absent; the sale
// then records one unit.
type SaleCreateRequest struct {
	ProductID      int64  `json:"producto_id" validate:"required,gt=0"`
	Quantity       *int   `json:"cantidad" validate:"omitempty,gt=0,lte=10000"`
	IdempotencyKey string `json:"-"`
}

type SaleFilter struct {
	Date      string
	ProductID int64
}

type SaleDeleteResult struct {
	Message string `json:"message"`
	Sale    Sale   `json:"venta"`
}

type Expense struct {
	ID          int64           `json:"id"`
	Concept     string          `json:"concepto"`
	Amount      decimal.Decimal `json:"monto"`
	Description string          `json:"descripcion"`
	ExpenseDate string          `json:"fecha_gasto"`
	ExpenseTime string          `json:"hora_gasto"`
	Active      bool            `json:"activo"`
	CreatedAt   time.Time       `json:"fecha_creacion"`
}

type ExpenseRequest struct {
	Concept     string           `json:"concepto" validate:"required,max=200"`
	Amount      *decimal.Decimal `json:"monto" validate:"required"`
	Description string           `json:"descripcion" validate:"max=2000"`
}

type ExpenseFilter struct {
	Date string
}

type ExpenseDeleteResult struct {
	Message string  `json:"message"`
	Expense Expense `json:"gasto"`
}

// SaleTotal multiplies the captured unit price by the quantity and rounds to
// the currency unit.
func SaleTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(0)
}

// SampleProducts is the starter catalogue loaded into empty stores.
func SampleProducts() []Product {
	return []Product{
		{Name: "Merengón", Category: "Postres", Price: decimal.NewFromInt(3500)},
		{Name: "Yogurt Natural", Category: "Lácteos", Price: decimal.NewFromInt(2800)},
		{Name: "Agua Botella 500ml", Category: "Bebidas", Price: decimal.NewFromInt(1500)},
		{Name: "Gaseosa Coca Cola", Category: "Bebidas", Price: decimal.NewFromInt(2200)},
		{Name: "Chocolate Jet", Category: "Snacks", Price: decimal.NewFromInt(1800)},
	}
}
