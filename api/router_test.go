package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seo-optimizer/competitor/analyzer"
	"github.com/seo-optimizer/competitor/competitor"
	"github.com/seo-optimizer/competitor/config"
	"github.com/seo-optimizer/competitor/stats"
)

type mapExtractor map[string]*analyzer.SignalRecord

func (m mapExtractor) Extract(_ context.Context, pageURL string) (*analyzer.SignalRecord, error) {
	if r, ok := m[pageURL]; ok {
		return r, nil
	}
	return nil, &analyzer.ExtractionError{URL: pageURL, Err: errors.New("unreachable")}
}

func newTestRouter(t *testing.T) (http.Handler, *stats.Storage) {
	t.Helper()
	log.Logger = zerolog.Nop()

	storage, err := stats.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { storage.Shutdown() })

	extractor := mapExtractor{
		"https://site.com":  {URL: "https://site.com", Title: "Home", Description: "Welcome", Headings: analyzer.HeadingCounts{H1: 1}},
		"https://rival.com": {URL: "https://rival.com", Title: "Rival", Description: analyzer.NoDescription},
	}
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.DevMode = true

	return NewRouter(competitor.NewService(extractor, storage), storage, cfg, time.Now()), storage
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestCompareEndpoint(t *testing.T) {
	h, storage := newTestRouter(t)

	w := postJSON(h, "/api/compare", `{"yourUrl":"https://site.com","competitorUrl":"https://rival.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp CompareResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != competitor.StatusDone || resp.Report == nil {
		t.Fatalf("Unexpected response %+v", resp)
	}
	if got := resp.Report.Entries[2]; got.Label != "H1 Tags" || got.Verdict != "better" {
		t.Errorf("Unexpected H1 entry %+v", got)
	}
	if resp.Summary.Better+resp.Summary.Worse+resp.Summary.Equal != 9 {
		t.Errorf("Summary does not cover all entries: %+v", resp.Summary)
	}
	if storage.GetCurrentStats().Comparisons != 1 {
		t.Errorf("Expected comparison to be counted")
	}
}

func TestCompareEndpointErrors(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"malformed body", `{`, http.StatusBadRequest, "Invalid request body"},
		{"missing url", `{"yourUrl":"https://site.com"}`, http.StatusBadRequest, competitor.MsgMissingURL},
		{"extraction failure", `{"yourUrl":"https://site.com","competitorUrl":"https://down.com"}`, http.StatusBadGateway, competitor.MsgFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(h, "/api/compare", tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantMsg) {
				t.Errorf("Expected %q in body, got %s", tt.wantMsg, w.Body.String())
			}
		})
	}
}

func TestWebForm(t *testing.T) {
	h, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<form") {
		t.Fatalf("Expected form page, got %d", w.Code)
	}

	form := url.Values{"yourUrl": {"https://site.com"}, "competitorUrl": {"https://rival.com"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `id="report"`) {
		t.Errorf("Expected report container in page")
	}
}

func TestIndexStartsIdle(t *testing.T) {
	h, storage := newTestRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, `id="report"`) || strings.Contains(body, `id="comparisonResults"`) {
		t.Errorf("Expected no report or message on the empty form\n%s", body)
	}
	if storage.GetCurrentStats().Comparisons != 0 {
		t.Error("Viewing the form should not count a comparison")
	}
}

func TestWebFormMalformedBody(t *testing.T) {
	h, storage := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("yourUrl=%zz&competitorUrl=https://rival.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), msgInvalidBody) {
		t.Errorf("Expected %q in page\n%s", msgInvalidBody, w.Body.String())
	}
	if got := storage.GetCurrentStats(); got.Comparisons != 0 || got.FailedComparisons != 0 {
		t.Errorf("Malformed submission should not reach the analysis, got %+v", got)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)
	postJSON(h, "/api/compare", `{"yourUrl":"https://site.com","competitorUrl":"https://down.com"}`)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/statistics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body struct {
		CurrentMonth stats.MonthlyStats            `json:"currentMonth"`
		Months       map[string]stats.MonthlyStats `json:"months"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode statistics: %v", err)
	}
	if body.CurrentMonth.FailedComparisons != 1 || body.CurrentMonth.ExtractionFailures != 1 {
		t.Errorf("Unexpected statistics %+v", body.CurrentMonth)
	}
	if len(body.Months) != 1 {
		t.Errorf("Expected month history in dev mode, got %v", body.Months)
	}
}
