package domain

import "time"

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

func NewDateRange(from time.Time, to time.Time) DateRange {
	from, to = StartOfDay(from), StartOfDay(to)
	if to.Before(from) {
		from, to = to, from
	}
	return DateRange{From: from, To: to}
}

// SingleDay returns the range covering only the day of t.
func SingleDay(t time.Time) DateRange {
	return NewDateRange(t, t)
}

func (r DateRange) FromDate() string { return r.From.Format(DateLayout) }

func (r DateRange) ToDate() string { return r.To.Format(DateLayout) }

func (r DateRange) Contains(date string) bool {
	return date >= r.FromDate() && date <= r.ToDate()
}

// Days counts the calendar days in the range, both ends included.
func (r DateRange) Days() int {
	from := time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(r.To.Year(), r.To.Month(), r.To.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours()/24) + 1
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SalesTotals is a single-row aggregate over the sales in a range.
type SalesTotals struct {
	Transactions     int64
	Units            int64
	Revenue          float64
	DistinctProducts int64
	AverageTicket    float64
	MinSale          float64
	MaxSale          float64
	FirstSale        string
	LastSale         string
	DaysWithSales    int64
}

type ExpenseTotals struct {
	Amount float64
	Count  int64
}

type DayAggregate struct {
	Date             string
	Transactions     int64
	Units            int64
	Revenue          float64
	AverageTicket    float64
	DistinctProducts int64
	FirstSale        string
	LastSale         string
}

type DayExpense struct {
	Date   string
	Amount float64
}

type HourAggregate struct {
	Hour          int
	Transactions  int64
	Units         int64
	Revenue       float64
	AverageTicket float64
	DaysAnalyzed  int64
}

type MonthAggregate struct {
	Month            string
	Transactions     int64
	Units            int64
	Revenue          float64
	AverageTicket    float64
	DistinctProducts int64
	ActiveDays       int64
}

type ProductAggregate struct {
	ProductID        int64
	Name             string
	Category         string
	Price            float64
	Active           bool
	Units            int64
	Revenue          float64
	Transactions     int64
	AverageTicket    float64
	AverageUnitPrice float64
	DaysSold         int64
}
