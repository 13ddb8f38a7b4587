package recommendation

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cafeteria/backend/internal/domain"
)

// Rule is one ordered (predicate, message) pair. Message and Action are only
// called when When reports true.
type Rule[T any] struct {
	Kind    string
	When    func(in T) bool
	Message func(in T) string
	Action  func(in T) string
}

// Evaluate runs every rule once, in order, and collects the advice of the
// rules that fire. It never returns nil.
func Evaluate[T any](rules []Rule[T], in T) []domain.Advice {
	out := make([]domain.Advice, 0, len(rules))
	for _, rule := range rules {
		if rule.When == nil || !rule.When(in) {
			continue
		}
		advice := domain.Advice{Kind: rule.Kind}
		if rule.Message != nil {
			advice.Message = rule.Message(in)
		}
		if rule.Action != nil {
			advice.Action = rule.Action(in)
		}
		out = append(out, advice)
	}
	return out
}

// Messages is Evaluate reduced to the message text.
func Messages[T any](rules []Rule[T], in T) []string {
	advice := Evaluate(rules, in)
	out := make([]string, 0, len(advice))
	for _, a := range advice {
		out = append(out, a.Message)
	}
	return out
}

var (
	locale  = language.MustParse("es-CO")
	printer = message.NewPrinter(locale)
)

// Currency formats an amount in whole pesos with es-CO digit grouping.
func Currency(amount float64) string {
	return printer.Sprintf("$%d", int64(math.Round(amount)))
}

func Percent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

// Title capitalises a Spanish label such as a day or month name. A Caser is
// stateful, so each call gets its own.
func Title(s string) string {
	return cases.Title(locale).String(s)
}
