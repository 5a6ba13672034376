package calendar

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Pixel geometry of the rendered grid
const (
	WeekWidth   = 15 // cell plus gap
	CellSize    = 11
	DaysPerWeek = 7
)

const dateLayout = "2006-01-02"

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Palette is indexed by Bucket level, faintest first
var Palette = [5]string{
	"rgba(255,255,255,0.05)",
	"#0e4429",
	"#006d32",
	"#26a641",
	"#39d353",
}

// Bucket maps a contribution count to a palette level. Thresholds are
// fixed and independent of the data set; the top level is unbounded.
func Bucket(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 3:
		return 1
	case count <= 6:
		return 2
	case count <= 9:
		return 3
	default:
		return 4
	}
}

// ColorFor returns the palette color for a contribution count
func ColorFor(count int) string {
	return Palette[Bucket(count)]
}

// MonthLabel marks the week column where a month label starts
type MonthLabel struct {
	Month  string
	Offset int // week index
}

// MonthLabels walks weeks in order and emits a label whenever a week's
// first day falls in a different month than the last emitted label.
// Week 0 never emits. Weeks with an unparseable first day are skipped.
func MonthLabels(weeks []Week) []MonthLabel {
	labels := []MonthLabel{}
	lastMonth := time.Month(0)

	for i, w := range weeks {
		first, err := time.Parse(dateLayout, w.FirstDay)
		if err != nil {
			continue
		}
		month := first.Month()
		if i > 0 && month != lastMonth {
			labels = append(labels, MonthLabel{Month: monthNames[month-1], Offset: i})
			lastMonth = month
		}
	}

	return labels
}

// Cell is one rendered day square
type Cell struct {
	Date    string
	Count   int
	Level   int
	Color   string
	Weekday int
	Border  bool // empty days get a faint outline
}

// Column is one rendered week
type Column struct {
	FirstDay string
	Cells    []Cell
}

// PositionedLabel is a month label with its horizontal pixel offset
type PositionedLabel struct {
	Month string
	Left  int
}

// Layout is the render model for one calendar
type Layout struct {
	Total   int
	Width   int
	Labels  []PositionedLabel
	Columns []Column
}

// BuildLayout derives the render model. A calendar with no weeks yields an
// empty grid; a nil calendar is treated the same way.
func BuildLayout(cal *Calendar) Layout {
	if cal == nil {
		return Layout{Labels: []PositionedLabel{}, Columns: []Column{}}
	}

	layout := Layout{
		Total:   cal.TotalContributions,
		Width:   len(cal.Weeks) * WeekWidth,
		Labels:  []PositionedLabel{},
		Columns: make([]Column, 0, len(cal.Weeks)),
	}

	for _, l := range MonthLabels(cal.Weeks) {
		layout.Labels = append(layout.Labels, PositionedLabel{Month: l.Month, Left: l.Offset * WeekWidth})
	}

	for _, w := range cal.Weeks {
		col := Column{FirstDay: w.FirstDay, Cells: make([]Cell, 0, len(w.ContributionDays))}
		for _, d := range w.ContributionDays {
			level := Bucket(d.ContributionCount)
			col.Cells = append(col.Cells, Cell{
				Date:    d.Date,
				Count:   d.ContributionCount,
				Level:   level,
				Color:   Palette[level],
				Weekday: d.Weekday,
				Border:  d.ContributionCount == 0,
			})
		}
		layout.Columns = append(layout.Columns, col)
	}

	return layout
}

// FormatTooltipDate renders "2024-03-15" as "Mar 15, 2024". Unparseable
// input is returned unchanged.
func FormatTooltipDate(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}

// ContributionNoun pluralizes "contribution" for n
func ContributionNoun(n int) string {
	if n == 1 {
		return "contribution"
	}
	return "contributions"
}

// FormatCount groups thousands, e.g. 1234 -> "1,234"
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
