package reporting

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/recommendation"
	"cafeteria/backend/internal/store"
)

const stableInsight = "Rendimiento estable respecto al período anterior"

// Comparative compares the current month to date with the whole previous
// month, or the current week (from Sunday) with the previous Sunday to
// Saturday. An empty kind means monthly.
func (e *Engine) Comparative(ctx context.Context, kind string) (domain.Comparative, error) {
	if kind == "" {
		kind = domain.ComparativeMonthly
	}
	cur, prev, err := e.comparativeRanges(kind)
	if err != nil {
		return domain.Comparative{}, err
	}

	run := e.begin(ctx, "comparativo_"+kind)
	var curSales, prevSales domain.SalesTotals
	var curExp, prevExp domain.ExpenseTotals
	run.section("periodoActual", func(ctx context.Context) error {
		s, err := e.store.SalesTotals(ctx, cur)
		if err != nil {
			return err
		}
		x, err := e.store.ExpenseTotals(ctx, cur)
		if err != nil {
			return err
		}
		curSales, curExp = s, x
		return nil
	})
	run.section("periodoAnterior", func(ctx context.Context) error {
		s, err := e.store.SalesTotals(ctx, prev)
		if err != nil {
			return err
		}
		x, err := e.store.ExpenseTotals(ctx, prev)
		if err != nil {
			return err
		}
		prevSales, prevExp = s, x
		return nil
	})
	var categories []domain.CategoryComparison
	if kind == domain.ComparativeMonthly {
		categories = []domain.CategoryComparison{}
		run.section("categorias", func(ctx context.Context) error {
			curRows, err := e.store.ProductSales(ctx, cur, false)
			if err != nil {
				return err
			}
			prevRows, err := e.store.ProductSales(ctx, prev, false)
			if err != nil {
				return err
			}
			categories = compareCategories(curRows, prevRows)
			return nil
		})
	}

	degraded, err := run.wait()
	if err != nil {
		return domain.Comparative{}, err
	}

	metrics := compareTotals(curSales, prevSales, curExp, prevExp)
	insights := recommendation.Messages(recommendation.ComparativeInsights, metrics)
	if len(insights) == 0 {
		insights = []string{stableInsight}
	}
	return domain.Comparative{
		Kind:            kind,
		Current:         periodOf(cur),
		Previous:        periodOf(prev),
		Metrics:         metrics,
		Categories:      categories,
		Insights:        insights,
		Recommendations: recommendation.Messages(recommendation.ComparativeRecommendations, metrics),
		Degraded:        degraded,
		Timestamp:       e.now(),
	}, nil
}

func (e *Engine) comparativeRanges(kind string) (cur, prev domain.DateRange, err error) {
	today := e.Today()
	switch kind {
	case domain.ComparativeMonthly:
		first := today.AddDate(0, 0, -(today.Day() - 1))
		lastMonth := first.AddDate(0, -1, 0)
		return domain.NewDateRange(first, today), monthRange(lastMonth.Year(), lastMonth.Month(), e.opts.Location), nil
	case domain.ComparativeWeekly:
		sunday := today.AddDate(0, 0, -int(today.Weekday()))
		return domain.NewDateRange(sunday, today), daysBack(sunday.AddDate(0, 0, -1), 7), nil
	default:
		return cur, prev, fmt.Errorf("%w: tipo de comparación %q no soportado", store.ErrInvalidInput, kind)
	}
}

// compareCategories pairs category revenue across both periods. Categories
// present in only one period compare against zero.
func compareCategories(cur, prev []domain.ProductAggregate) []domain.CategoryComparison {
	revenue := func(rows []domain.ProductAggregate) map[string]float64 {
		out := map[string]float64{}
		for _, row := range rows {
			name := row.Category
			if name == "" {
				name = domain.DefaultCategory
			}
			out[name] += row.Revenue
		}
		return out
	}
	curRev, prevRev := revenue(cur), revenue(prev)

	names := make([]string, 0, len(curRev)+len(prevRev))
	for name := range curRev {
		names = append(names, name)
	}
	for name := range prevRev {
		if _, ok := curRev[name]; !ok {
			names = append(names, name)
		}
	}

	out := make([]domain.CategoryComparison, 0, len(names))
	for _, name := range names {
		c := Compare(curRev[name], prevRev[name])
		out = append(out, domain.CategoryComparison{
			Category:  name,
			Actual:    c.Actual,
			Previous:  c.Previous,
			Variation: c.Variation,
			Trend:     c.Trend,
		})
	}
	slices.SortFunc(out, func(a, b domain.CategoryComparison) int {
		if c := cmp.Compare(b.Actual, a.Actual); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}
