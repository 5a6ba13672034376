package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yashith03/portfolio/internal/github"
	"github.com/yashith03/portfolio/internal/widget"
)

// ContributionsHandler exposes one year's calendar as JSON. Every request
// goes upstream; nothing is cached.
type ContributionsHandler struct {
	fetcher widget.Fetcher
}

// NewContributionsHandler creates a new contributions handler
func NewContributionsHandler(fetcher widget.Fetcher) *ContributionsHandler {
	return &ContributionsHandler{fetcher: fetcher}
}

// Get handles GET /api/contributions/{username}?year=
func (h *ContributionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		respondError(w, http.StatusBadRequest, "Username is required")
		return
	}

	year := 0
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil || y <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = y
	}

	cal, err := h.fetcher.FetchContributions(r.Context(), username, year)
	if err != nil {
		slog.Error("Failed to fetch contributions",
			"username", username,
			"year", year,
			"kind", github.Kind(err),
			"error", err,
		)

		var dataErr *github.DataError
		if errors.As(err, &dataErr) {
			respondError(w, http.StatusUnprocessableEntity, widget.LoadErrorMessage)
			return
		}
		respondError(w, http.StatusBadGateway, widget.LoadErrorMessage)
		return
	}

	respondJSON(w, http.StatusOK, cal)
}
