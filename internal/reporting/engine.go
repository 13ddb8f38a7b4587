package reporting

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cafeteria/backend/internal/domain"
	"cafeteria/backend/internal/store"
)

// Options tunes the report windows. Zero values fall back to the defaults
// applied by NewEngine.
type Options struct {
	BusinessName            string
	Location                *time.Location
	OperatingHourStart      int
	OperatingHourEnd        int
	TopProductsLimit        int
	TopProductsWindowDays   int
	TrendWindowDays         int
	CategoryWindowDays      int
	ForecastMinDays         int
	LowTransactionThreshold float64
	CategoryEmoji           map[string]string
}

const (
	forecastLongWindow  = 30
	forecastShortWindow = 7
	weekdayWindowDays   = 60
	trendsWindowDays    = 30
	periodTopLimit      = 15
	productForecastMax  = 20
)

// Engine computes every report from an injected ReportStore. It holds no
// state between calls.
type Engine struct {
	store   store.ReportStore
	opts    Options
	now     func() time.Time
	logger  zerolog.Logger
	metrics *Metrics
}

func NewEngine(st store.ReportStore, opts Options, logger zerolog.Logger, metrics *Metrics) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.OperatingHourEnd <= opts.OperatingHourStart {
		opts.OperatingHourStart, opts.OperatingHourEnd = 6, 12
	}
	if opts.TopProductsLimit < 1 {
		opts.TopProductsLimit = 8
	}
	if opts.TrendWindowDays < 1 {
		opts.TrendWindowDays = 7
	}
	if opts.CategoryWindowDays < 1 {
		opts.CategoryWindowDays = 7
	}
	if opts.ForecastMinDays < 1 {
		opts.ForecastMinDays = 7
	}
	if opts.LowTransactionThreshold <= 0 {
		opts.LowTransactionThreshold = 10
	}
	if opts.CategoryEmoji == nil {
		opts.CategoryEmoji = map[string]string{}
	}

	return &Engine{
		store:   st,
		opts:    opts,
		now:     time.Now,
		logger:  logger.With().Str("component", "reporting").Logger(),
		metrics: metrics,
	}
}

// WithClock replaces the time source. Used by tests to pin "today".
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Today is the current business day in the configured timezone.
func (e *Engine) Today() time.Time {
	return domain.StartOfDay(e.now().In(e.opts.Location))
}

func (e *Engine) Location() *time.Location {
	return e.opts.Location
}

// run fans the sections of one report out concurrently. A failing section is
// logged and left at its zero value; only store unavailability and context
// errors abort the report.
type run struct {
	engine *Engine
	report string
	group  *errgroup.Group
	ctx    context.Context
	start  time.Time

	mu       sync.Mutex
	degraded []string
}

func (e *Engine) begin(ctx context.Context, report string) *run {
	group, groupCtx := errgroup.WithContext(ctx)
	return &run{engine: e, report: report, group: group, ctx: groupCtx, start: time.Now()}
}

func (r *run) section(name string, fn func(ctx context.Context) error) {
	r.group.Go(func() error {
		err := fn(r.ctx)
		if err == nil {
			return nil
		}
		if isFatal(err) {
			return fmt.Errorf("%s/%s: %w", r.report, name, err)
		}
		r.mu.Lock()
		r.degraded = append(r.degraded, name)
		r.mu.Unlock()
		r.engine.logger.Warn().Err(err).Str("report", r.report).Str("section", name).Msg("report section degraded")
		r.engine.metrics.SectionDegraded(r.report, name)
		return nil
	})
}

// wait joins the sections and returns the sorted list of degraded ones.
func (r *run) wait() ([]string, error) {
	err := r.group.Wait()
	r.engine.metrics.ObserveReport(r.report, time.Since(r.start), err)
	if err != nil {
		return nil, err
	}
	if len(r.degraded) == 0 {
		return nil, nil
	}
	out := append([]string(nil), r.degraded...)
	slices.Sort(out)
	return out, nil
}

func isFatal(err error) bool {
	return errors.Is(err, store.ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func daysBack(day time.Time, n int) domain.DateRange {
	return domain.NewDateRange(day.AddDate(0, 0, -(n-1)), day)
}

func monthRange(year int, month time.Month, loc *time.Location) domain.DateRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return domain.NewDateRange(first, first.AddDate(0, 1, -1))
}

func periodOf(r domain.DateRange) domain.Period {
	return domain.Period{From: r.FromDate(), To: r.ToDate()}
}
