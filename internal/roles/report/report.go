// Package report builds a plain-text business report from a sales CSV with
// date, revenue and expenses columns.
package report

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/haricheung/bizflow/internal/tools"
)

// topDates is how many dates the "Top revenue by date" section lists.
const topDates = 3

// Summary holds the aggregates computed from one sales file.
type Summary struct {
	Rows              int
	TotalRevenue      float64
	TotalExpenses     float64
	Profit            float64
	AvgDailyRevenue   float64
	RevenueByDate     []DateRevenue // first-appearance order
	TopRevenueByDates []DateRevenue // descending by revenue, at most topDates
}

// DateRevenue is the summed revenue for one date.
type DateRevenue struct {
	Date    string
	Revenue float64
}

// Agent generates reports.
type Agent struct{}

// New creates a report Agent.
func New() *Agent { return &Agent{} }

// Generate reads the CSV at path and renders the report text.
func (a *Agent) Generate(path string) (string, error) {
	log.Printf("[REPORT] generating report from %s", path)
	t, err := tools.ReadCSV(path)
	if err != nil {
		return "", err
	}
	s, err := Summarize(t)
	if err != nil {
		return "", fmt.Errorf("report: %w", err)
	}
	log.Printf("[REPORT] metrics rows=%d revenue=%s expenses=%s profit=%s",
		s.Rows, num(s.TotalRevenue), num(s.TotalExpenses), num(s.Profit))
	return Render(s), nil
}

// Summarize computes the report aggregates over t.
//
// Expectations:
//   - Profit equals total revenue minus total expenses
//   - Revenue is grouped and summed per date; the average is the mean of those sums
//   - Top dates are ordered by revenue descending, ties keep first-appearance order
//   - Blank revenue/expenses cells are skipped; rows with a blank date stay out of the grouping
//   - Missing date/revenue/expenses column or non-numeric text is an error
func Summarize(t *tools.Table) (Summary, error) {
	dates, err := t.Strings("date")
	if err != nil {
		return Summary{}, err
	}
	revenue, err := t.Floats("revenue")
	if err != nil {
		return Summary{}, err
	}
	expenses, err := t.Floats("expenses")
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Rows:          t.Len(),
		TotalRevenue:  floats.Sum(revenue),
		TotalExpenses: floats.Sum(expenses),
	}
	s.Profit = s.TotalRevenue - s.TotalExpenses

	idx := map[string]int{}
	for i, d := range dates {
		if d == "" {
			continue
		}
		j, ok := idx[d]
		if !ok {
			j = len(s.RevenueByDate)
			idx[d] = j
			s.RevenueByDate = append(s.RevenueByDate, DateRevenue{Date: d})
		}
		s.RevenueByDate[j].Revenue += revenue[i]
	}

	sums := make([]float64, len(s.RevenueByDate))
	for i, dr := range s.RevenueByDate {
		sums[i] = dr.Revenue
	}
	s.AvgDailyRevenue = stat.Mean(sums, nil)

	top := append([]DateRevenue(nil), s.RevenueByDate...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Revenue > top[j].Revenue })
	if len(top) > topDates {
		top = top[:topDates]
	}
	s.TopRevenueByDates = top
	return s, nil
}

// Render formats s as the report text.
func Render(s Summary) string {
	lines := []string{
		"=== Business Report ===",
		fmt.Sprintf("Rows of data: %d", s.Rows),
		"Total revenue: " + num(s.TotalRevenue),
		"Total expenses: " + num(s.TotalExpenses),
		"Total profit: " + num(s.Profit),
		fmt.Sprintf("Average daily revenue: %.2f", s.AvgDailyRevenue),
		"",
		"Top revenue by date:",
	}
	for _, dr := range s.TopRevenueByDates {
		lines = append(lines, fmt.Sprintf("  %s: %s", dr.Date, num(dr.Revenue)))
	}
	lines = append(lines, "", "Note: This is a simple report. The agent can be extended with more KPIs.")
	return strings.Join(lines, "\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
