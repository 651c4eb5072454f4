package widgets

import (
	"fmt"
	"strings"
)

// MonthBars is one month's worth of bars in the comparison chart.
type MonthBars struct {
	Label   string
	Income  float64
	Expense float64
	Budget  float64
}

// Chart renders a horizontal bar chart comparing income, expense and
// budget per month.
type Chart struct {
	Title string
	Data  []MonthBars
}

func (c Chart) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(c.Data) == 0 {
		return c.Title + "\n(no data)"
	}
	maxV := 0.0
	for _, m := range c.Data {
		for _, v := range []float64{m.Income, m.Expense, m.Budget} {
			if v > maxV {
				maxV = v
			}
		}
	}
	if maxV <= 0 {
		maxV = 1
	}
	barWidth := width - 16
	if barWidth < 1 {
		barWidth = 1
	}
	bar := func(v float64, fill string) string {
		w := int((v / maxV) * float64(barWidth))
		if w < 1 && v > 0 {
			w = 1
		}
		return strings.Repeat(fill, w)
	}
	lines := []string{c.Title}
	for _, m := range c.Data {
		lines = append(lines,
			fmt.Sprintf("%-4s in  %s %.2f", m.Label, bar(m.Income, "#"), m.Income),
			fmt.Sprintf("%-4s out %s %.2f", "", bar(m.Expense, "="), m.Expense),
			fmt.Sprintf("%-4s bgt %s %.2f", "", bar(m.Budget, "-"), m.Budget),
		)
		if len(lines) >= height {
			break
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// BudgetChart is the single-series variant, one bar per month of
// budget totals.
type BudgetChart struct {
	Title string
	Data  []MonthBars
}

func (c BudgetChart) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(c.Data) == 0 {
		return c.Title + "\n(no data)"
	}
	maxV := 0.0
	for _, m := range c.Data {
		if m.Budget > maxV {
			maxV = m.Budget
		}
	}
	if maxV <= 0 {
		maxV = 1
	}
	barWidth := width - 16
	if barWidth < 1 {
		barWidth = 1
	}
	lines := []string{c.Title}
	for _, m := range c.Data {
		w := int((m.Budget / maxV) * float64(barWidth))
		if w < 1 && m.Budget > 0 {
			w = 1
		}
		lines = append(lines, fmt.Sprintf("%-4s %s %.2f", m.Label, strings.Repeat("#", w), m.Budget))
		if len(lines) >= height {
			break
		}
	}
	return strings.Join(lines, "\n")
}
