package widget

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yashith03/portfolio/internal/calendar"
)

//go:embed templates/*.html
var templateFS embed.FS

var widgetTmpl = template.Must(
	template.New("widget").
		Funcs(template.FuncMap{
			"formatCount": calendar.FormatCount,
			"tooltipDate": calendar.FormatTooltipDate,
			"noun":        calendar.ContributionNoun,
			"px":          func(n int) template.CSS { return template.CSS(fmt.Sprintf("%dpx", n)) },
			"pxf":         func(f float64) template.CSS { return template.CSS(fmt.Sprintf("%.0fpx", f)) },
			"color":       func(c string) template.CSS { return template.CSS(c) }, // palette constants only
			"seq":         func(n int) []int { return make([]int, n) },
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// skeletonWeeks is the width of the loading placeholder grid
const skeletonWeeks = 50

type fragmentViewModel struct {
	ID            string
	Username      string
	State         State
	Years         []int
	Selected      int
	Total         int
	Layout        calendar.Layout
	Tooltip       *Tooltip
	Palette       []string
	ErrorMessage  string
	SkeletonWeeks int
	DaysPerWeek   int
	CellSize      int
}

// RenderFragment writes the HTML fragment for a view snapshot
func RenderFragment(w io.Writer, id string, snap Snapshot) error {
	vm := fragmentViewModel{
		ID:            id,
		Username:      snap.Username,
		State:         snap.State,
		Years:         snap.Years,
		Selected:      snap.Selected,
		Total:         snap.Layout.Total,
		Layout:        snap.Layout,
		Tooltip:       snap.Tooltip,
		Palette:       calendar.Palette[:],
		SkeletonWeeks: skeletonWeeks,
		DaysPerWeek:   calendar.DaysPerWeek,
		CellSize:      calendar.CellSize,
	}
	if snap.State == StateError {
		vm.ErrorMessage = LoadErrorMessage
	}

	var buf bytes.Buffer
	if err := widgetTmpl.ExecuteTemplate(&buf, "widget.html", vm); err != nil {
		return fmt.Errorf("render widget: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
