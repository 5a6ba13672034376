package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yashith03/portfolio/internal/calendar"
	"github.com/yashith03/portfolio/internal/widget"
)

// WidgetHandler serves mounted contribution-calendar views
type WidgetHandler struct {
	registry *widget.Registry
	username string
}

// NewWidgetHandler creates a new widget handler for username
func NewWidgetHandler(registry *widget.Registry, username string) *WidgetHandler {
	return &WidgetHandler{
		registry: registry,
		username: username,
	}
}

// MountResponse is returned when a view is mounted
type MountResponse struct {
	ID    string       `json:"id"`
	State widget.State `json:"state"`
	Years []int        `json:"years"`
}

// StateResponse is the JSON form of a view snapshot
type StateResponse struct {
	ID                 string          `json:"id"`
	Username           string          `json:"username"`
	State              widget.State    `json:"state"`
	Years              []int           `json:"years"`
	Selected           int             `json:"selected"`
	TotalContributions *int            `json:"totalContributions,omitempty"`
	Weeks              int             `json:"weeks"`
	Tooltip            *widget.Tooltip `json:"tooltip,omitempty"`
	Error              string          `json:"error,omitempty"`
}

// HoverRequest carries pointer and container coordinates from the browser
type HoverRequest struct {
	Date          string  `json:"date"`
	ClientX       float64 `json:"clientX"`
	ClientY       float64 `json:"clientY"`
	ContainerLeft float64 `json:"containerLeft"`
	ContainerTop  float64 `json:"containerTop"`
}

// HoverResponse is the tooltip plus its display text, so the page can
// draw it without fetching the fragment again
type HoverResponse struct {
	widget.Tooltip
	DateLabel  string `json:"dateLabel"`
	CountLabel string `json:"countLabel"`
}

// Mount handles POST /api/widget
func (h *WidgetHandler) Mount(w http.ResponseWriter, r *http.Request) {
	id, view := h.registry.Mount(r.Context(), h.username)

	respondJSON(w, http.StatusCreated, MountResponse{
		ID:    id,
		State: view.Snapshot().State,
		Years: view.Years(),
	})
}

// Fragment handles GET /api/widget/{id}
func (h *WidgetHandler) Fragment(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.renderFragment(w, id, view)
}

// State handles GET /api/widget/{id}/state
func (h *WidgetHandler) State(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snap := view.Snapshot()
	response := StateResponse{
		ID:       id,
		Username: snap.Username,
		State:    snap.State,
		Years:    snap.Years,
		Selected: snap.Selected,
		Tooltip:  snap.Tooltip,
	}
	switch snap.State {
	case widget.StateReady:
		total := snap.Layout.Total
		response.TotalContributions = &total
		response.Weeks = len(snap.Layout.Columns)
	case widget.StateError:
		response.Error = widget.LoadErrorMessage
	}

	respondJSON(w, http.StatusOK, response)
}

// SelectYear handles POST /api/widget/{id}/year/{year}
func (h *WidgetHandler) SelectYear(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.lookup(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid year")
		return
	}

	if err := view.SelectYear(year); err != nil {
		h.respondViewError(w, err)
		return
	}

	h.renderFragment(w, id, view)
}

// Hover handles POST /api/widget/{id}/hover
func (h *WidgetHandler) Hover(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req HoverRequest
	if err := parseJSON(r, &req); err != nil || req.Date == "" {
		respondError(w, http.StatusBadRequest, "Invalid hover request")
		return
	}

	tip, err := view.HoverDate(req.Date,
		widget.Point{X: req.ClientX, Y: req.ClientY},
		widget.Rect{Left: req.ContainerLeft, Top: req.ContainerTop},
	)
	if err != nil {
		h.respondViewError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, HoverResponse{
		Tooltip:    tip,
		DateLabel:  calendar.FormatTooltipDate(tip.Date),
		CountLabel: strconv.Itoa(tip.Count) + " " + calendar.ContributionNoun(tip.Count),
	})
}

// Leave handles DELETE /api/widget/{id}/hover
func (h *WidgetHandler) Leave(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.lookup(w, r)
	if !ok {
		return
	}
	view.Leave()
	w.WriteHeader(http.StatusNoContent)
}

// Unmount handles DELETE /api/widget/{id}
func (h *WidgetHandler) Unmount(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Unmount(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "Widget not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WidgetHandler) lookup(w http.ResponseWriter, r *http.Request) (string, *widget.View, bool) {
	id := chi.URLParam(r, "id")
	view, ok := h.registry.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Widget not found")
		return "", nil, false
	}
	return id, view, true
}

func (h *WidgetHandler) renderFragment(w http.ResponseWriter, id string, view *widget.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := widget.RenderFragment(w, id, view.Snapshot()); err != nil {
		slog.Error("Failed to render widget", "id", id, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *WidgetHandler) respondViewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, widget.ErrNotReady):
		respondError(w, http.StatusConflict, "Widget is not ready")
	case errors.Is(err, widget.ErrYearOutOfRange):
		respondError(w, http.StatusBadRequest, "Year outside the selectable window")
	case errors.Is(err, widget.ErrUnknownDate):
		respondError(w, http.StatusNotFound, "Date not in selected calendar")
	default:
		slog.Error("Widget operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
