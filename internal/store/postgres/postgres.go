package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/store"
)

//go:embed schema.sql
var schema string

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(ctx context.Context, databaseURL string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, classify(err)
	}

	return &Store{db: db, logger: logger.With().Str("component", "postgres").Logger()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.db.PingContext(ctx))
}

// Migrate applies the embedded schema and loads the starter catalogue when
// the product table is empty. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", classify(err))
		}
	}

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*)::bigint FROM productos`).Scan(&count); err != nil {
		return classify(err)
	}
	if count == 0 {
		for _, p := range domain.SampleProducts() {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO productos (nombre, categoria, precio)
				VALUES ($1,$2,$3)
				ON CONFLICT (nombre) DO NOTHING
			`, p.Name, p.Category, p.Price); err != nil {
				return fmt.Errorf("seed products: %w", classify(err))
			}
		}
		s.logger.Info().Int("products", len(domain.SampleProducts())).Msg("seeded starter catalogue")
	}

	return classify(tx.Commit())
}

const productColumns = `id, nombre, categoria, precio, activo, fecha_creacion, fecha_actualizacion`

func scanProduct(row interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM productos
		WHERE activo = true
		ORDER BY nombre, id
	`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM productos
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, classify(err)
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	if product.Category == "" {
		product.Category = domain.DefaultCategory
	}

	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		INSERT INTO productos (nombre, categoria, precio)
		VALUES ($1,$2,$3)
		RETURNING `+productColumns,
		product.Name, product.Category, product.Price))
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}

	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE productos
		SET nombre = $2, categoria = $3, precio = $4, fecha_actualizacion = now()
		WHERE id = $1 AND activo = true
		RETURNING `+productColumns,
		product.ID, product.Name, product.Category, product.Price))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, classify(err)
	}
	return p, nil
}

func (s *Store) DeactivateProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE productos
		SET activo = false, fecha_actualizacion = now()
		WHERE id = $1
		RETURNING `+productColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, classify(err)
	}
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		DELETE FROM productos
		WHERE id = $1
		RETURNING `+productColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, classify(err)
	}
	return p, nil
}

func (s *Store) CountSalesByProduct(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)::bigint FROM ventas WHERE producto_id = $1
	`, productID).Scan(&count)
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

func (s *Store) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	query := psql.
		Select(
			"v.id", "v.producto_id", "p.nombre", "v.cantidad", "v.precio_unitario", "v.total",
			"to_char(v.fecha_venta, 'YYYY-MM-DD')", "to_char(v.hora_venta, 'HH24:MI:SS')", "v.fecha_creacion",
		).
		From("ventas v").
		Join("productos p ON p.id = v.producto_id").
		OrderBy("v.fecha_creacion DESC", "v.id DESC")
	if filter.Date != "" {
		query = query.Where(squirrel.Expr("v.fecha_venta = ?::date", filter.Date))
	}
	if filter.ProductID > 0 {
		query = query.Where(squirrel.Eq{"v.producto_id": filter.ProductID})
	}

	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(
			&sale.ID, &sale.ProductID, &sale.ProductName, &sale.Quantity, &sale.UnitPrice, &sale.Total,
			&sale.SaleDate, &sale.SaleTime, &sale.CreatedAt,
		); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return sales, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.Quantity < 1 || sale.UnitPrice.IsNegative() || sale.SaleDate == "" {
		return nil, store.ErrInvalidInput
	}

	created := sale
	err := s.db.QueryRowContext(ctx, `
		WITH inserted AS (
			INSERT INTO ventas (producto_id, cantidad, precio_unitario, total, fecha_venta, hora_venta)
			VALUES ($1,$2,$3,$4,$5::date,$6::time)
			RETURNING id, producto_id, fecha_creacion
		)
		SELECT i.id, p.nombre, i.fecha_creacion
		FROM inserted i
		JOIN productos p ON p.id = i.producto_id
	`, sale.ProductID, sale.Quantity, sale.UnitPrice, sale.Total, sale.SaleDate, sale.SaleTime).
		Scan(&created.ID, &created.ProductName, &created.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, classify(err)
	}
	return &created, nil
}

func (s *Store) DeleteSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, `
		WITH deleted AS (
			DELETE FROM ventas
			WHERE id = $1
			RETURNING id, producto_id, cantidad, precio_unitario, total, fecha_venta, hora_venta, fecha_creacion
		)
		SELECT d.id, d.producto_id, p.nombre, d.cantidad, d.precio_unitario, d.total,
			to_char(d.fecha_venta, 'YYYY-MM-DD'), to_char(d.hora_venta, 'HH24:MI:SS'), d.fecha_creacion
		FROM deleted d
		JOIN productos p ON p.id = d.producto_id
	`, id).Scan(
		&sale.ID, &sale.ProductID, &sale.ProductName, &sale.Quantity, &sale.UnitPrice, &sale.Total,
		&sale.SaleDate, &sale.SaleTime, &sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, classify(err)
	}
	return &sale, nil
}

var expenseSelect = []string{
	"id", "concepto", "monto", "descripcion",
	"to_char(fecha_gasto, 'YYYY-MM-DD')", "to_char(hora_gasto, 'HH24:MI:SS')",
	"activo", "fecha_creacion",
}

var expenseColumns = strings.Join(expenseSelect, ", ")

func scanExpense(row interface{ Scan(dest ...any) error }) (*domain.Expense, error) {
	var e domain.Expense
	if err := row.Scan(&e.ID, &e.Concept, &e.Amount, &e.Description, &e.ExpenseDate, &e.ExpenseTime, &e.Active, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	query := psql.
		Select(expenseSelect...).
		From("gastos").
		Where(squirrel.Eq{"activo": true}).
		OrderBy("fecha_creacion DESC", "id DESC")
	if filter.Date != "" {
		query = query.Where(squirrel.Expr("fecha_gasto = ?::date", filter.Date))
	}

	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 16)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return expenses, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.Concept == "" || expense.Amount.IsNegative() || expense.ExpenseDate == "" {
		return nil, store.ErrInvalidInput
	}

	e, err := scanExpense(s.db.QueryRowContext(ctx, `
		INSERT INTO gastos (concepto, monto, descripcion, fecha_gasto, hora_gasto)
		VALUES ($1,$2,$3,$4::date,$5::time)
		RETURNING `+expenseColumns,
		expense.Concept, expense.Amount, expense.Description, expense.ExpenseDate, expense.ExpenseTime))
	if err != nil {
		return nil, classify(err)
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.Concept == "" || expense.Amount.IsNegative() {
		return nil, store.ErrInvalidInput
	}

	e, err := scanExpense(s.db.QueryRowContext(ctx, `
		UPDATE gastos
		SET concepto = $2, monto = $3, descripcion = $4
		WHERE id = $1 AND activo = true
		RETURNING `+expenseColumns,
		expense.ID, expense.Concept, expense.Amount, expense.Description))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, classify(err)
	}
	return e, nil
}

func (s *Store) DeactivateExpense(ctx context.Context, id int64) (*domain.Expense, error) {
	e, err := scanExpense(s.db.QueryRowContext(ctx, `
		UPDATE gastos
		SET activo = false
		WHERE id = $1 AND activo = true
		RETURNING `+expenseColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, classify(err)
	}
	return e, nil
}

// classify maps driver errors onto the store sentinels. Connectivity
// failures become ErrUnavailable, constraint violations ErrConflict.
// Context cancellation is returned untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isUniqueViolation(err) || isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	if isConnectivity(err) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}

func isConnectivity(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
