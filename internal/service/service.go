package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"cafeteria/backend/internal/cache"
	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/store"
)

// Service implements the product, sale and expense use cases on top of a
// store.Repository. Dates and times are stamped in the business timezone.
type Service struct {
	repo      store.Repository
	replay    cache.SaleReplayCache
	replayTTL time.Duration
	validate  *validator.Validate
	loc       *time.Location
	now       func() time.Time
	logger    zerolog.Logger
}

func New(repo store.Repository, replay cache.SaleReplayCache, replayTTL time.Duration, loc *time.Location, logger zerolog.Logger) *Service {
	if replay == nil {
		replay = cache.NoopSaleReplayCache{}
	}
	if replayTTL <= 0 {
		replayTTL = 10 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}

	return &Service{
		repo:      repo,
		replay:    replay,
		replayTTL: replayTTL,
		validate:  validator.New(),
		loc:       loc,
		now:       time.Now,
		logger:    logger.With().Str("component", "service").Logger(),
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Today is the current date in the business timezone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(domain.DateLayout)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if err := s.check(req); err != nil {
		return domain.Product{}, err
	}
	if req.Price.IsNegative() {
		return domain.Product{}, invalid("precio no puede ser negativo")
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:     req.Name,
		Category: req.Category,
		Price:    *req.Price,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info().Int64("product_id", created.ID).Str("name", created.Name).Str("price", created.Price.String()).Msg("product created")
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := s.check(req); err != nil {
		return domain.Product{}, err
	}
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !existing.Active {
		return domain.Product{}, store.ErrNotFound
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, invalid("nombre no puede estar vacío")
		}
		updated.Name = name
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
		if updated.Category == "" {
			updated.Category = domain.DefaultCategory
		}
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return domain.Product{}, invalid("precio no puede ser negativo")
		}
		updated.Price = *req.Price
	}

	result, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.Info().Int64("product_id", id).Msg("product updated")
	return *result, nil
}

// DeleteProduct removes a product that was never sold. A product referenced
// by any sale is only deactivated so the ledger keeps its name.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (domain.ProductDeleteResult, error) {
	sold, err := s.repo.CountSalesByProduct(ctx, id)
	if err != nil {
		return domain.ProductDeleteResult{}, err
	}

	if sold == 0 {
		deleted, err := s.repo.DeleteProduct(ctx, id)
		switch {
		case err == nil:
			s.logger.Info().Int64("product_id", id).Msg("product deleted")
			return domain.ProductDeleteResult{Message: "Producto eliminado", Product: *deleted}, nil
		case !errors.Is(err, store.ErrConflict):
			return domain.ProductDeleteResult{}, err
		}
		// a sale was recorded between the count and the delete
	}

	deactivated, err := s.repo.DeactivateProduct(ctx, id)
	if err != nil {
		return domain.ProductDeleteResult{}, err
	}
	s.logger.Info().Int64("product_id", id).Int64("sales", sold).Msg("product deactivated")
	return domain.ProductDeleteResult{
		Message:     "Producto desactivado porque tiene ventas registradas",
		Deactivated: true,
		Product:     *deactivated,
	}, nil
}

// ListSales defaults to today's sales when no date is given.
func (s *Service) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	if filter.Date == "" {
		filter.Date = s.Today()
	}
	return s.repo.ListSales(ctx, filter)
}

// CreateSale records a sale at the product's current price. A request that
// repeats an idempotency key returns the sale created the first time and
// reports duplicate as true; while the first request is still running the
// repeat fails with store.ErrConflict.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (sale domain.Sale, duplicate bool, err error) {
	if err := s.check(req); err != nil {
		return domain.Sale{}, false, err
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		previous, held, err := s.reserve(ctx, key)
		if err != nil {
			return domain.Sale{}, false, err
		}
		if previous != nil {
			return *previous, true, nil
		}
		if !held {
			key = ""
		}
	}
	if key != "" {
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.replay.Release(context.WithoutCancel(ctx), key); relErr != nil {
				s.logger.Warn().Err(relErr).Str("idempotency_key", key).Msg("idempotency release failed")
			}
		}()
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.Sale{}, false, err
	}
	if !product.Active {
		return domain.Sale{}, false, fmt.Errorf("%w: producto inactivo", store.ErrNotFound)
	}

	now := s.now().In(s.loc)
	created, err := s.repo.CreateSale(ctx, domain.Sale{
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		Total:     domain.SaleTotal(product.Price, quantity),
		SaleDate:  now.Format(domain.DateLayout),
		SaleTime:  now.Format(domain.TimeLayout),
	})
	if err != nil {
		return domain.Sale{}, false, err
	}
	created.ProductName = product.Name

	if key != "" {
		if err := s.replay.Set(context.WithoutCancel(ctx), key, created, s.replayTTL); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency store failed")
		}
	}

	s.logger.Info().
		Int64("sale_id", created.ID).
		Int64("product_id", created.ProductID).
		Int("quantity", created.Quantity).
		Str("total", created.Total.String()).
		Msg("sale created")
	return *created, false, nil
}

// reserve claims key before the sale is inserted. It returns the stored sale
// when an earlier request with the same key finished, or held as true when
// this request owns the key. An unreachable cache leaves held false so the
// sale goes ahead without replay protection.
func (s *Service) reserve(ctx context.Context, key string) (previous *domain.Sale, held bool, err error) {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.replay.Reserve(ctx, key, s.replayTTL)
		if err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed")
			return nil, false, nil
		}
		if ok {
			return nil, true, nil
		}

		sale, found, err := s.replay.Get(ctx, key)
		switch {
		case errors.Is(err, cache.ErrPending):
			return nil, false, fmt.Errorf("%w: venta con la misma Idempotency-Key en proceso", store.ErrConflict)
		case err != nil:
			return nil, false, fmt.Errorf("idempotency lookup: %w", err)
		case found:
			return sale, false, nil
		}
		// released or expired between Reserve and Get
	}
	return nil, false, fmt.Errorf("%w: venta con la misma Idempotency-Key en proceso", store.ErrConflict)
}

func (s *Service) DeleteSale(ctx context.Context, id int64) (domain.SaleDeleteResult, error) {
	deleted, err := s.repo.DeleteSale(ctx, id)
	if err != nil {
		return domain.SaleDeleteResult{}, err
	}
	s.logger.Info().Int64("sale_id", id).Str("total", deleted.Total.String()).Msg("sale deleted")
	return domain.SaleDeleteResult{Message: "Venta eliminada", Sale: *deleted}, nil
}

// ListExpenses defaults to today's active expenses when no date is given.
func (s *Service) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	if filter.Date == "" {
		filter.Date = s.Today()
	}
	return s.repo.ListExpenses(ctx, filter)
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseRequest) (domain.Expense, error) {
	expense, err := s.expenseFrom(req)
	if err != nil {
		return domain.Expense{}, err
	}
	now := s.now().In(s.loc)
	expense.ExpenseDate = now.Format(domain.DateLayout)
	expense.ExpenseTime = now.Format(domain.TimeLayout)

	created, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return domain.Expense{}, err
	}
	s.logger.Info().Int64("expense_id", created.ID).Str("amount", created.Amount.String()).Msg("expense created")
	return *created, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id int64, req domain.ExpenseRequest) (domain.Expense, error) {
	expense, err := s.expenseFrom(req)
	if err != nil {
		return domain.Expense{}, err
	}
	expense.ID = id

	updated, err := s.repo.UpdateExpense(ctx, expense)
	if err != nil {
		return domain.Expense{}, err
	}
	s.logger.Info().Int64("expense_id", id).Msg("expense updated")
	return *updated, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) (domain.ExpenseDeleteResult, error) {
	deactivated, err := s.repo.DeactivateExpense(ctx, id)
	if err != nil {
		return domain.ExpenseDeleteResult{}, err
	}
	s.logger.Info().Int64("expense_id", id).Msg("expense deactivated")
	return domain.ExpenseDeleteResult{Message: "Gasto eliminado", Expense: *deactivated}, nil
}

func (s *Service) expenseFrom(req domain.ExpenseRequest) (domain.Expense, error) {
	req.Concept = strings.TrimSpace(req.Concept)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.check(req); err != nil {
		return domain.Expense{}, err
	}
	if req.Amount.IsNegative() {
		return domain.Expense{}, invalid("monto no puede ser negativo")
	}
	return domain.Expense{
		Concept:     req.Concept,
		Amount:      *req.Amount,
		Description: req.Description,
	}, nil
}

// check runs the struct validation tags and reports the first failing field.
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return invalid(fmt.Sprintf("campo %s inválido (%s)", f.Field(), f.Tag()))
	}
	return invalid(err.Error())
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", store.ErrInvalidInput, msg)
}
