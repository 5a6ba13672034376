package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yashith03/portfolio/internal/calendar"
	"github.com/yashith03/portfolio/internal/github"
)

// WindowSize is how many recent years a view fetches, current year included
const WindowSize = 3

// LoadErrorMessage is the only error text shown to visitors
const LoadErrorMessage = "Failed to load GitHub activity"

var (
	ErrNotReady       = errors.New("widget: view is not ready")
	ErrYearOutOfRange = errors.New("widget: year outside the selectable window")
	ErrAlreadyLoaded  = errors.New("widget: view already loaded")
	ErrUnknownDate    = errors.New("widget: date not in selected calendar")
)

// Fetcher retrieves one year's contribution calendar
type Fetcher interface {
	FetchContributions(ctx context.Context, username string, year int) (*calendar.Calendar, error)
}

// State is the lifecycle state of a view
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateReady   State = "ready"
)

// Point is a pointer position in client coordinates
type Point struct {
	X float64
	Y float64
}

// Rect is the container's bounding box in client coordinates
type Rect struct {
	Left float64
	Top  float64
}

// Tooltip is the hover state of a day cell. X/Y are relative to the container.
type Tooltip struct {
	Date  string  `json:"date"`
	Count int     `json:"count"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// View is one mounted contribution widget. It fetches the whole year
// window once and serves everything else from memory.
type View struct {
	fetcher  Fetcher
	username string
	years    []int

	mu        sync.Mutex
	state     State
	loadErr   error
	started   bool
	closed    bool
	byYear    map[int]*calendar.Calendar
	selected  int
	tooltip   *Tooltip
	layout    *calendar.Layout
	layoutFor int
}

// NewView creates a view in the Loading state for the window ending at now's year
func NewView(fetcher Fetcher, username string, now time.Time) *View {
	current := now.Year()
	years := make([]int, 0, WindowSize)
	for i := WindowSize - 1; i >= 0; i-- {
		years = append(years, current-i)
	}

	return &View{
		fetcher:  fetcher,
		username: username,
		years:    years,
		state:    StateLoading,
		selected: current,
	}
}

// Username returns the account the view displays
func (v *View) Username() string { return v.username }

// Years returns the selectable years, oldest first
func (v *View) Years() []int { return slices.Clone(v.years) }

// Load fetches every year in the window concurrently and waits for all
// of them. One failure fails the whole load; there is no partial Ready.
// If the view was closed meanwhile, the results are dropped.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return ErrAlreadyLoaded
	}
	v.started = true
	v.mu.Unlock()

	results := make([]*calendar.Calendar, len(v.years))
	g, gctx := errgroup.WithContext(ctx)
	for i, year := range v.years {
		g.Go(func() error {
			cal, err := v.fetcher.FetchContributions(gctx, v.username, year)
			if err != nil {
				return fmt.Errorf("fetch %d: %w", year, err)
			}
			results[i] = cal
			return nil
		})
	}
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		slog.Debug("Discarding contributions for closed view", "username", v.username)
		return err
	}

	if err != nil {
		slog.Error("Failed to fetch GitHub contributions",
			"username", v.username,
			"kind", github.Kind(err),
			"error", err,
		)
		v.state = StateError
		v.loadErr = err
		return err
	}

	byYear := make(map[int]*calendar.Calendar, len(v.years))
	for i, year := range v.years {
		byYear[year] = results[i]
	}
	v.byYear = byYear
	v.state = StateReady
	return nil
}

// SelectYear switches the displayed calendar. It never fetches and it
// clears any open tooltip.
func (v *View) SelectYear(year int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateReady {
		return ErrNotReady
	}
	if !slices.Contains(v.years, year) {
		return ErrYearOutOfRange
	}
	if year != v.selected {
		v.tooltip = nil
	}
	v.selected = year
	return nil
}

// Hover records the tooltip for day at pointer, relative to container
func (v *View) Hover(day calendar.Day, pointer Point, container Rect) (Tooltip, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateReady {
		return Tooltip{}, ErrNotReady
	}
	return v.hoverLocked(day, pointer, container), nil
}

// hoverLocked sets the tooltip. v.mu must be held.
func (v *View) hoverLocked(day calendar.Day, pointer Point, container Rect) Tooltip {
	tip := Tooltip{
		Date:  day.Date,
		Count: day.ContributionCount,
		X:     pointer.X - container.Left,
		Y:     pointer.Y - container.Top,
	}
	v.tooltip = &tip
	return tip
}

// HoverDate looks the date up in the selected calendar and hovers it
func (v *View) HoverDate(date string, pointer Point, container Rect) (Tooltip, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateReady {
		return Tooltip{}, ErrNotReady
	}
	day, ok := v.byYear[v.selected].FindDay(date)
	if !ok {
		return Tooltip{}, ErrUnknownDate
	}
	return v.hoverLocked(day, pointer, container), nil
}

// Leave clears the tooltip
func (v *View) Leave() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tooltip = nil
}

// Close tears the view down. Safe to call multiple times.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.tooltip = nil
}

// Closed reports whether Close has been called
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Snapshot is a point-in-time copy of a view for rendering
type Snapshot struct {
	Username string
	State    State
	Years    []int
	Selected int
	Err      error
	Calendar *calendar.Calendar
	Layout   calendar.Layout
	Tooltip  *Tooltip
}

// Snapshot copies the current state. The layout of the selected year is
// computed once and reused until the selection changes.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Username: v.username,
		State:    v.state,
		Years:    slices.Clone(v.years),
		Selected: v.selected,
		Err:      v.loadErr,
	}

	if v.state != StateReady {
		return snap
	}

	cal := v.byYear[v.selected]
	if v.layout == nil || v.layoutFor != v.selected {
		layout := calendar.BuildLayout(cal)
		v.layout = &layout
		v.layoutFor = v.selected
	}

	snap.Calendar = cal
	snap.Layout = *v.layout
	if v.tooltip != nil {
		tip := *v.tooltip
		snap.Tooltip = &tip
	}
	return snap
}
