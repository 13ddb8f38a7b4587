package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	sales    map[int64]domain.Sale
	expenses map[int64]domain.Expense

	nextProductID int64
	nextSaleID    int64
	nextExpenseID int64
}

func New() *Store {
	return &Store{
		products: make(map[int64]domain.Product),
		sales:    make(map[int64]domain.Sale),
		expenses: make(map[int64]domain.Expense),
	}
}

// NewSeeded returns a store holding the shop's starter catalogue.
func NewSeeded() *Store {
	s := New()
	for _, p := range domain.SampleProducts() {
		_, _ = s.CreateProduct(context.Background(), p)
	}
	return s
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Name == b.Name {
			return cmp.Compare(a.ID, b.ID)
		}
		return strings.Compare(a.Name, b.Name)
	})

	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	if s.nameTaken(product.Name, 0) {
		return nil, store.ErrConflict
	}
	if product.Category == "" {
		product.Category = domain.DefaultCategory
	}

	s.nextProductID++
	now := time.Now().UTC()
	product.ID = s.nextProductID
	product.Active = true
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = product

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	current, exists := s.products[product.ID]
	if !exists || !current.Active {
		return nil, store.ErrNotFound
	}
	if s.nameTaken(product.Name, product.ID) {
		return nil, store.ErrConflict
	}

	current.Name = product.Name
	current.Category = product.Category
	current.Price = product.Price
	current.UpdatedAt = time.Now().UTC()
	s.products[current.ID] = current

	updated := current
	return &updated, nil
}

func (s *Store) DeactivateProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	product.Active = false
	product.UpdatedAt = time.Now().UTC()
	s.products[id] = product

	deactivated := product
	return &deactivated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	for _, sale := range s.sales {
		if sale.ProductID == id {
			return nil, store.ErrConflict
		}
	}
	delete(s.products, id)
	return &product, nil
}

func (s *Store) CountSalesByProduct(_ context.Context, productID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, sale := range s.sales {
		if sale.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListSales(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, 32)
	for _, sale := range s.sales {
		if filter.Date != "" && sale.SaleDate != filter.Date {
			continue
		}
		if filter.ProductID > 0 && sale.ProductID != filter.ProductID {
			continue
		}
		sale.ProductName = s.products[sale.ProductID].Name
		sales = append(sales, sale)
	}

	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return sales, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.Quantity < 1 || sale.UnitPrice.IsNegative() || sale.SaleDate == "" {
		return nil, store.ErrInvalidInput
	}
	product, exists := s.products[sale.ProductID]
	if !exists {
		return nil, store.ErrNotFound
	}

	s.nextSaleID++
	sale.ID = s.nextSaleID
	sale.ProductName = ""
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	s.sales[sale.ID] = sale

	created := sale
	created.ProductName = product.Name
	return &created, nil
}

func (s *Store) DeleteSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.sales[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	delete(s.sales, id)
	sale.ProductName = s.products[sale.ProductID].Name
	return &sale, nil
}

func (s *Store) ListExpenses(_ context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := make([]domain.Expense, 0, 16)
	for _, e := range s.expenses {
		if !e.Active {
			continue
		}
		if filter.Date != "" && e.ExpenseDate != filter.Date {
			continue
		}
		expenses = append(expenses, e)
	}

	slices.SortFunc(expenses, func(a, b domain.Expense) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return expenses, nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.Concept == "" || expense.Amount.IsNegative() || expense.ExpenseDate == "" {
		return nil, store.ErrInvalidInput
	}

	s.nextExpenseID++
	expense.ID = s.nextExpenseID
	expense.Active = true
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	s.expenses[expense.ID] = expense

	created := expense
	return &created, nil
}

func (s *Store) UpdateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.Concept == "" || expense.Amount.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	current, exists := s.expenses[expense.ID]
	if !exists || !current.Active {
		return nil, store.ErrNotFound
	}

	current.Concept = expense.Concept
	current.Amount = expense.Amount
	current.Description = expense.Description
	s.expenses[current.ID] = current

	updated := current
	return &updated, nil
}

func (s *Store) DeactivateExpense(_ context.Context, id int64) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expense, exists := s.expenses[id]
	if !exists || !expense.Active {
		return nil, store.ErrNotFound
	}
	expense.Active = false
	s.expenses[id] = expense

	deactivated := expense
	return &deactivated, nil
}

func (s *Store) SalesTotals(_ context.Context, r domain.DateRange) (domain.SalesTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.SalesTotals
	products := map[int64]struct{}{}
	days := map[string]struct{}{}
	for _, sale := range s.salesIn(r) {
		total := sale.Total.InexactFloat64()
		if totals.Transactions == 0 || total < totals.MinSale {
			totals.MinSale = total
		}
		if total > totals.MaxSale {
			totals.MaxSale = total
		}
		if totals.FirstSale == "" || sale.SaleTime < totals.FirstSale {
			totals.FirstSale = sale.SaleTime
		}
		if sale.SaleTime > totals.LastSale {
			totals.LastSale = sale.SaleTime
		}
		totals.Transactions++
		totals.Units += int64(sale.Quantity)
		totals.Revenue += total
		products[sale.ProductID] = struct{}{}
		days[sale.SaleDate] = struct{}{}
	}
	totals.DistinctProducts = int64(len(products))
	totals.DaysWithSales = int64(len(days))
	totals.AverageTicket = average(totals.Revenue, totals.Transactions)
	return totals, nil
}

func (s *Store) ExpenseTotals(_ context.Context, r domain.DateRange) (domain.ExpenseTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.ExpenseTotals
	for _, e := range s.expensesIn(r) {
		totals.Amount += e.Amount.InexactFloat64()
		totals.Count++
	}
	return totals, nil
}

func (s *Store) DailySales(_ context.Context, r domain.DateRange) ([]domain.DayAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := map[string]*domain.DayAggregate{}
	products := map[string]map[int64]struct{}{}
	for _, sale := range s.salesIn(r) {
		day := byDay[sale.SaleDate]
		if day == nil {
			day = &domain.DayAggregate{Date: sale.SaleDate, FirstSale: sale.SaleTime, LastSale: sale.SaleTime}
			byDay[sale.SaleDate] = day
			products[sale.SaleDate] = map[int64]struct{}{}
		}
		day.Transactions++
		day.Units += int64(sale.Quantity)
		day.Revenue += sale.Total.InexactFloat64()
		day.FirstSale = min(day.FirstSale, sale.SaleTime)
		day.LastSale = max(day.LastSale, sale.SaleTime)
		products[sale.SaleDate][sale.ProductID] = struct{}{}
	}

	out := make([]domain.DayAggregate, 0, len(byDay))
	for date, day := range byDay {
		day.DistinctProducts = int64(len(products[date]))
		day.AverageTicket = average(day.Revenue, day.Transactions)
		out = append(out, *day)
	}
	slices.SortFunc(out, func(a, b domain.DayAggregate) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out, nil
}

func (s *Store) DailyExpenses(_ context.Context, r domain.DateRange) ([]domain.DayExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := map[string]float64{}
	for _, e := range s.expensesIn(r) {
		byDay[e.ExpenseDate] += e.Amount.InexactFloat64()
	}

	out := make([]domain.DayExpense, 0, len(byDay))
	for date, amount := range byDay {
		out = append(out, domain.DayExpense{Date: date, Amount: amount})
	}
	slices.SortFunc(out, func(a, b domain.DayExpense) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out, nil
}

func (s *Store) HourlySales(_ context.Context, r domain.DateRange) ([]domain.HourAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byHour := map[int]*domain.HourAggregate{}
	days := map[int]map[string]struct{}{}
	for _, sale := range s.salesIn(r) {
		hour := saleHour(sale.SaleTime)
		bucket := byHour[hour]
		if bucket == nil {
			bucket = &domain.HourAggregate{Hour: hour}
			byHour[hour] = bucket
			days[hour] = map[string]struct{}{}
		}
		bucket.Transactions++
		bucket.Units += int64(sale.Quantity)
		bucket.Revenue += sale.Total.InexactFloat64()
		days[hour][sale.SaleDate] = struct{}{}
	}

	out := make([]domain.HourAggregate, 0, len(byHour))
	for hour, bucket := range byHour {
		bucket.DaysAnalyzed = int64(len(days[hour]))
		bucket.AverageTicket = average(bucket.Revenue, bucket.Transactions)
		out = append(out, *bucket)
	}
	slices.SortFunc(out, func(a, b domain.HourAggregate) int {
		return cmp.Compare(a.Hour, b.Hour)
	})
	return out, nil
}

func (s *Store) MonthlySales(_ context.Context, r domain.DateRange) ([]domain.MonthAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byMonth := map[string]*domain.MonthAggregate{}
	products := map[string]map[int64]struct{}{}
	days := map[string]map[string]struct{}{}
	for _, sale := range s.salesIn(r) {
		month := sale.SaleDate[:7]
		bucket := byMonth[month]
		if bucket == nil {
			bucket = &domain.MonthAggregate{Month: month}
			byMonth[month] = bucket
			products[month] = map[int64]struct{}{}
			days[month] = map[string]struct{}{}
		}
		bucket.Transactions++
		bucket.Units += int64(sale.Quantity)
		bucket.Revenue += sale.Total.InexactFloat64()
		products[month][sale.ProductID] = struct{}{}
		days[month][sale.SaleDate] = struct{}{}
	}

	out := make([]domain.MonthAggregate, 0, len(byMonth))
	for month, bucket := range byMonth {
		bucket.DistinctProducts = int64(len(products[month]))
		bucket.ActiveDays = int64(len(days[month]))
		bucket.AverageTicket = average(bucket.Revenue, bucket.Transactions)
		out = append(out, *bucket)
	}
	slices.SortFunc(out, func(a, b domain.MonthAggregate) int {
		return strings.Compare(a.Month, b.Month)
	})
	return out, nil
}

func (s *Store) ProductSales(_ context.Context, r domain.DateRange, includeUnsold bool) ([]domain.ProductAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProduct := map[int64]*domain.ProductAggregate{}
	unitPrices := map[int64]float64{}
	days := map[int64]map[string]struct{}{}

	entry := func(id int64) *domain.ProductAggregate {
		agg := byProduct[id]
		if agg == nil {
			p := s.products[id]
			agg = &domain.ProductAggregate{
				ProductID: id,
				Name:      p.Name,
				Category:  p.Category,
				Price:     p.Price.InexactFloat64(),
				Active:    p.Active,
			}
			byProduct[id] = agg
			days[id] = map[string]struct{}{}
		}
		return agg
	}

	if includeUnsold {
		for id, p := range s.products {
			if p.Active {
				entry(id)
			}
		}
	}
	for _, sale := range s.salesIn(r) {
		if includeUnsold && !s.products[sale.ProductID].Active {
			continue
		}
		agg := entry(sale.ProductID)
		agg.Units += int64(sale.Quantity)
		agg.Revenue += sale.Total.InexactFloat64()
		agg.Transactions++
		unitPrices[sale.ProductID] += sale.UnitPrice.InexactFloat64()
		days[sale.ProductID][sale.SaleDate] = struct{}{}
	}

	out := make([]domain.ProductAggregate, 0, len(byProduct))
	for id, agg := range byProduct {
		agg.DaysSold = int64(len(days[id]))
		agg.AverageTicket = average(agg.Revenue, agg.Transactions)
		agg.AverageUnitPrice = average(unitPrices[id], agg.Transactions)
		out = append(out, *agg)
	}
	slices.SortFunc(out, func(a, b domain.ProductAggregate) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return out, nil
}

// salesIn expects the caller to hold the read lock.
func (s *Store) salesIn(r domain.DateRange) []domain.Sale {
	out := make([]domain.Sale, 0, 64)
	for _, sale := range s.sales {
		if r.Contains(sale.SaleDate) {
			out = append(out, sale)
		}
	}
	slices.SortFunc(out, func(a, b domain.Sale) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Store) expensesIn(r domain.DateRange) []domain.Expense {
	out := make([]domain.Expense, 0, 16)
	for _, e := range s.expenses {
		if e.Active && r.Contains(e.ExpenseDate) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) nameTaken(name string, exceptID int64) bool {
	for id, p := range s.products {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}

func saleHour(saleTime string) int {
	head, _, _ := strings.Cut(saleTime, ":")
	hour, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return hour
}

func average(sum float64, count int64) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
