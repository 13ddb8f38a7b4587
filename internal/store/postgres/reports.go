package postgres

import (
	"context"

	"cafeteria/backend/internal/domain"
)

func (s *Store) SalesTotals(ctx context.Context, r domain.DateRange) (domain.SalesTotals, error) {
	var totals domain.SalesTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*)::bigint,
			COALESCE(SUM(cantidad),0)::bigint,
			COALESCE(SUM(total),0)::float8,
			COUNT(DISTINCT producto_id)::bigint,
			COALESCE(AVG(total),0)::float8,
			COALESCE(MIN(total),0)::float8,
			COALESCE(MAX(total),0)::float8,
			COALESCE(to_char(MIN(hora_venta), 'HH24:MI:SS'),''),
			COALESCE(to_char(MAX(hora_venta), 'HH24:MI:SS'),''),
			COUNT(DISTINCT fecha_venta)::bigint
		FROM ventas
		WHERE fecha_venta BETWEEN $1::date AND $2::date
	`, r.FromDate(), r.ToDate()).Scan(
		&totals.Transactions,
		&totals.Units,
		&totals.Revenue,
		&totals.DistinctProducts,
		&totals.AverageTicket,
		&totals.MinSale,
		&totals.MaxSale,
		&totals.FirstSale,
		&totals.LastSale,
		&totals.DaysWithSales,
	)
	if err != nil {
		return domain.SalesTotals{}, classify(err)
	}
	return totals, nil
}

func (s *Store) ExpenseTotals(ctx context.Context, r domain.DateRange) (domain.ExpenseTotals, error) {
	var totals domain.ExpenseTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(monto),0)::float8, COUNT(*)::bigint
		FROM gastos
		WHERE activo = true
			AND fecha_gasto BETWEEN $1::date AND $2::date
	`, r.FromDate(), r.ToDate()).Scan(&totals.Amount, &totals.Count)
	if err != nil {
		return domain.ExpenseTotals{}, classify(err)
	}
	return totals, nil
}

func (s *Store) DailySales(ctx context.Context, r domain.DateRange) ([]domain.DayAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			to_char(fecha_venta, 'YYYY-MM-DD'),
			COUNT(*)::bigint,
			COALESCE(SUM(cantidad),0)::bigint,
			COALESCE(SUM(total),0)::float8,
			COALESCE(AVG(total),0)::float8,
			COUNT(DISTINCT producto_id)::bigint,
			to_char(MIN(hora_venta), 'HH24:MI:SS'),
			to_char(MAX(hora_venta), 'HH24:MI:SS')
		FROM ventas
		WHERE fecha_venta BETWEEN $1::date AND $2::date
		GROUP BY fecha_venta
		ORDER BY fecha_venta
	`, r.FromDate(), r.ToDate())
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]domain.DayAggregate, 0, r.Days())
	for rows.Next() {
		var row domain.DayAggregate
		if err := rows.Scan(
			&row.Date, &row.Transactions, &row.Units, &row.Revenue, &row.AverageTicket,
			&row.DistinctProducts, &row.FirstSale, &row.LastSale,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *Store) DailyExpenses(ctx context.Context, r domain.DateRange) ([]domain.DayExpense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(fecha_gasto, 'YYYY-MM-DD'), COALESCE(SUM(monto),0)::float8
		FROM gastos
		WHERE activo = true
			AND fecha_gasto BETWEEN $1::date AND $2::date
		GROUP BY fecha_gasto
		ORDER BY fecha_gasto
	`, r.FromDate(), r.ToDate())
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]domain.DayExpense, 0, r.Days())
	for rows.Next() {
		var row domain.DayExpense
		if err := rows.Scan(&row.Date, &row.Amount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *Store) HourlySales(ctx context.Context, r domain.DateRange) ([]domain.HourAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			EXTRACT(HOUR FROM hora_venta)::int AS hora,
			COUNT(*)::bigint,
			COALESCE(SUM(cantidad),0)::bigint,
			COALESCE(SUM(total),0)::float8,
			COALESCE(AVG(total),0)::float8,
			COUNT(DISTINCT fecha_venta)::bigint
		FROM ventas
		WHERE fecha_venta BETWEEN $1::date AND $2::date
		GROUP BY hora
		ORDER BY hora
	`, r.FromDate(), r.ToDate())
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]domain.HourAggregate, 0, 24)
	for rows.Next() {
		var row domain.HourAggregate
		if err := rows.Scan(&row.Hour, &row.Transactions, &row.Units, &row.Revenue, &row.AverageTicket, &row.DaysAnalyzed); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *Store) MonthlySales(ctx context.Context, r domain.DateRange) ([]domain.MonthAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			to_char(date_trunc('month', fecha_venta), 'YYYY-MM') AS mes,
			COUNT(*)::bigint,
			COALESCE(SUM(cantidad),0)::bigint,
			COALESCE(SUM(total),0)::float8,
			COALESCE(AVG(total),0)::float8,
			COUNT(DISTINCT producto_id)::bigint,
			COUNT(DISTINCT fecha_venta)::bigint
		FROM ventas
		WHERE fecha_venta BETWEEN $1::date AND $2::date
		GROUP BY mes
		ORDER BY mes
	`, r.FromDate(), r.ToDate())
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]domain.MonthAggregate, 0, 4)
	for rows.Next() {
		var row domain.MonthAggregate
		if err := rows.Scan(
			&row.Month, &row.Transactions, &row.Units, &row.Revenue, &row.AverageTicket,
			&row.DistinctProducts, &row.ActiveDays,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

const productSalesSold = `
	SELECT
		p.id, p.nombre, p.categoria, p.precio::float8, p.activo,
		COALESCE(SUM(v.cantidad),0)::bigint,
		COALESCE(SUM(v.total),0)::float8,
		COUNT(v.id)::bigint,
		COALESCE(AVG(v.total),0)::float8,
		COALESCE(AVG(v.precio_unitario),0)::float8,
		COUNT(DISTINCT v.fecha_venta)::bigint
	FROM ventas v
	JOIN productos p ON p.id = v.producto_id
	WHERE v.fecha_venta BETWEEN $1::date AND $2::date
	GROUP BY p.id
	ORDER BY p.id
`

const productSalesWithUnsold = `
	SELECT
		p.id, p.nombre, p.categoria, p.precio::float8, p.activo,
		COALESCE(SUM(v.cantidad),0)::bigint,
		COALESCE(SUM(v.total),0)::float8,
		COUNT(v.id)::bigint,
		COALESCE(AVG(v.total),0)::float8,
		COALESCE(AVG(v.precio_unitario),0)::float8,
		COUNT(DISTINCT v.fecha_venta)::bigint
	FROM productos p
	LEFT JOIN ventas v ON v.producto_id = p.id
		AND v.fecha_venta BETWEEN $1::date AND $2::date
	WHERE p.activo = true
	GROUP BY p.id
	ORDER BY p.id
`

func (s *Store) ProductSales(ctx context.Context, r domain.DateRange, includeUnsold bool) ([]domain.ProductAggregate, error) {
	query := productSalesSold
	if includeUnsold {
		query = productSalesWithUnsold
	}

	rows, err := s.db.QueryContext(ctx, query, r.FromDate(), r.ToDate())
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]domain.ProductAggregate, 0, 32)
	for rows.Next() {
		var row domain.ProductAggregate
		if err := rows.Scan(
			&row.ProductID, &row.Name, &row.Category, &row.Price, &row.Active,
			&row.Units, &row.Revenue, &row.Transactions, &row.AverageTicket, &row.AverageUnitPrice, &row.DaysSold,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}
