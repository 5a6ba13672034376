package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yashith03/portfolio/internal/calendar"
	"github.com/yashith03/portfolio/internal/github"
	"github.com/yashith03/portfolio/internal/portfolio"
	"github.com/yashith03/portfolio/internal/widget"
)

type stubFetcher struct {
	calls atomic.Int32
	err   error
}

func (s *stubFetcher) FetchContributions(ctx context.Context, username string, year int) (*calendar.Calendar, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	first := time.Date(year, time.March, 10, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	return &calendar.Calendar{
		TotalContributions: year - 2000,
		Weeks: []calendar.Week{{FirstDay: first, ContributionDays: []calendar.Day{
			{Date: first, ContributionCount: 7, Weekday: 0},
		}}},
	}, nil
}

func newTestServer(t *testing.T, fetcher widget.Fetcher) (*httptest.Server, *widget.Registry) {
	t.Helper()

	data, err := portfolio.Load()
	if err != nil {
		t.Fatal(err)
	}

	registry := widget.NewRegistry(fetcher, time.Hour)
	result := NewRouter(&RouterConfig{
		Registry: registry,
		Fetcher:  fetcher,
		Page:     &portfolio.Page{Data: data, Username: "octocat"},
		Username: "octocat",
	})

	srv := httptest.NewServer(result.Router)
	t.Cleanup(func() {
		srv.Close()
		result.RateLimiters.Stop()
		registry.Stop()
	})
	return srv, registry
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func mount(t *testing.T, srv *httptest.Server) MountResponse {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/api/widget", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("mount status = %d", resp.StatusCode)
	}
	var m MountResponse
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	return m
}

func waitState(t *testing.T, srv *httptest.Server, id string, want widget.State) StateResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp := do(t, http.MethodGet, srv.URL+"/api/widget/"+id+"/state", nil)
		var s StateResponse
		json.NewDecoder(resp.Body).Decode(&s)
		if s.State == want {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("state never reached %s, last %s", want, s.State)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWidget_Lifecycle(t *testing.T) {
	fetcher := &stubFetcher{}
	srv, _ := newTestServer(t, fetcher)
	now := time.Now().Year()

	m := mount(t, srv)
	if len(m.Years) != 3 || m.Years[2] != now {
		t.Errorf("years = %v", m.Years)
	}

	state := waitState(t, srv, m.ID, widget.StateReady)
	if state.Selected != now || state.TotalContributions == nil || *state.TotalContributions != now-2000 {
		t.Errorf("unexpected ready state %+v", state)
	}

	resp := do(t, http.MethodGet, srv.URL+"/api/widget/"+m.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fragment status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %s", ct)
	}

	prev := now - 1
	resp = do(t, http.MethodPost, srv.URL+"/api/widget/"+m.ID+"/year/"+strconv.Itoa(prev), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select status = %d", resp.StatusCode)
	}
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	if !strings.Contains(body.String(), "contributions in "+strconv.Itoa(prev)) {
		t.Error("fragment does not show the selected year")
	}

	hoverDate := time.Date(prev, time.March, 10, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	resp = do(t, http.MethodPost, srv.URL+"/api/widget/"+m.ID+"/hover", HoverRequest{
		Date: hoverDate, ClientX: 340, ClientY: 220, ContainerLeft: 100, ContainerTop: 80,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hover status = %d", resp.StatusCode)
	}
	var tip widget.Tooltip
	json.NewDecoder(resp.Body).Decode(&tip)
	if tip != (widget.Tooltip{Date: hoverDate, Count: 7, X: 240, Y: 140}) {
		t.Errorf("tooltip = %+v", tip)
	}

	resp = do(t, http.MethodDelete, srv.URL+"/api/widget/"+m.ID+"/hover", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("leave status = %d", resp.StatusCode)
	}
	if s := waitState(t, srv, m.ID, widget.StateReady); s.Tooltip != nil {
		t.Error("tooltip should be cleared")
	}

	if got := fetcher.calls.Load(); got != 3 {
		t.Errorf("fetch calls = %d, want 3", got)
	}

	resp = do(t, http.MethodDelete, srv.URL+"/api/widget/"+m.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("unmount status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, srv.URL+"/api/widget/"+m.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("fragment after unmount = %d", resp.StatusCode)
	}
}

func TestWidget_ErrorState(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{err: &github.NetworkError{StatusCode: 502}})

	m := mount(t, srv)
	state := waitState(t, srv, m.ID, widget.StateError)
	if state.Error != widget.LoadErrorMessage {
		t.Errorf("error = %q", state.Error)
	}

	resp := do(t, http.MethodPost, srv.URL+"/api/widget/"+m.ID+"/year/"+strconv.Itoa(time.Now().Year()), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("select in error state = %d, want 409", resp.StatusCode)
	}
}

func TestWidget_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	m := mount(t, srv)
	waitState(t, srv, m.ID, widget.StateReady)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown view", http.MethodGet, "/api/widget/nope", nil, http.StatusNotFound},
		{"year not a number", http.MethodPost, "/api/widget/" + m.ID + "/year/abc", nil, http.StatusBadRequest},
		{"year outside window", http.MethodPost, "/api/widget/" + m.ID + "/year/1999", nil, http.StatusBadRequest},
		{"hover without date", http.MethodPost, "/api/widget/" + m.ID + "/hover", HoverRequest{}, http.StatusBadRequest},
		{"hover unknown date", http.MethodPost, "/api/widget/" + m.ID + "/hover", HoverRequest{Date: "1999-01-01"}, http.StatusNotFound},
		{"unmount unknown", http.MethodDelete, "/api/widget/nope", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestPageAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})

	resp := do(t, http.MethodGet, srv.URL+"/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("page status = %d", resp.StatusCode)
	}

	mount(t, srv)
	resp = do(t, http.MethodGet, srv.URL+"/api/health", nil)
	var health HealthResponse
	json.NewDecoder(resp.Body).Decode(&health)
	if health.Status != "ok" || health.Services["widgets"] != "1 mounted" {
		t.Errorf("health = %+v", health)
	}
}

func TestWidget_HoverSweepKeepsViewUsable(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	m := mount(t, srv)
	waitState(t, srv, m.ID, widget.StateReady)

	now := time.Now().Year()
	date := time.Date(now, time.March, 10, 0, 0, 0, 0, time.UTC).Format("2006-01-02")

	for i := 0; i < 250; i++ {
		resp := do(t, http.MethodPost, srv.URL+"/api/widget/"+m.ID+"/hover", HoverRequest{
			Date: date, ClientX: float64(i), ClientY: 20,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("hover %d status = %d", i, resp.StatusCode)
		}
		if i == 0 {
			var hr HoverResponse
			json.NewDecoder(resp.Body).Decode(&hr)
			if hr.CountLabel != "7 contributions" || hr.DateLabel == "" || hr.Date != date {
				t.Errorf("hover response = %+v", hr)
			}
		}
	}

	resp := do(t, http.MethodPost, srv.URL+"/api/widget/"+m.ID+"/year/"+strconv.Itoa(now-2), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("year switch after hover sweep = %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health after hover sweep = %d", resp.StatusCode)
	}
}
