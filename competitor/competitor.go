package competitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seo-optimizer/competitor/analyzer"
	"github.com/seo-optimizer/competitor/comparison"
	"github.com/seo-optimizer/competitor/stats"
)

// User-facing messages.
const (
	MsgMissingURL  = "Please enter both URLs."
	MsgFetchFailed = "Failed to fetch data. Please try again."
)

// ErrMissingURL is returned when either URL is empty.
var ErrMissingURL = errors.New("both URLs are required")

// Status is the display state of an analysis.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Request names the two pages to compare.
type Request struct {
	YourURL       string `json:"yourUrl" form:"yourUrl"`
	CompetitorURL string `json:"competitorUrl" form:"competitorUrl"`
}

// Result is what a rendering layer reacts to. Report is set only when Status
// is StatusDone; Message only when Status is StatusFailed.
type Result struct {
	Status  Status             `json:"status"`
	Report  *comparison.Report `json:"report,omitempty"`
	Message string             `json:"message,omitempty"`
	Err     error              `json:"-"`
}

// Invalid reports whether the analysis was rejected before any network call.
func (r Result) Invalid() bool {
	return errors.Is(r.Err, ErrMissingURL)
}

// Extractor is the part of analyzer.Extractor the service needs.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (*analyzer.SignalRecord, error)
}

// Service runs competitor analyses.
type Service struct {
	extractor Extractor
	stats     *stats.Storage
}

// NewService creates a Service. storage may be nil.
func NewService(extractor Extractor, storage *stats.Storage) *Service {
	return &Service{extractor: extractor, stats: storage}
}

// Analyze compares the two pages in req. observe, when non-nil, receives
// every state the analysis passes through, ending with the returned Result.
func (s *Service) Analyze(ctx context.Context, req Request, observe func(Result)) Result {
	publish := func(r Result) Result {
		if observe != nil {
			observe(r)
		}
		return r
	}

	yourURL := strings.TrimSpace(req.YourURL)
	competitorURL := strings.TrimSpace(req.CompetitorURL)
	if yourURL == "" || competitorURL == "" {
		return publish(Result{Status: StatusFailed, Message: MsgMissingURL, Err: ErrMissingURL})
	}

	publish(Result{Status: StatusLoading})
	start := time.Now()

	var (
		wg                sync.WaitGroup
		yours, theirs     *analyzer.SignalRecord
		yourErr, theirErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		yours, yourErr = s.extractor.Extract(ctx, yourURL)
	}()
	go func() {
		defer wg.Done()
		theirs, theirErr = s.extractor.Extract(ctx, competitorURL)
	}()
	wg.Wait()

	if err := errors.Join(yourErr, theirErr); err != nil {
		s.record(false, failures(yourErr, theirErr))
		log.Warn().
			Err(err).
			Str("yourUrl", yourURL).
			Str("competitorUrl", competitorURL).
			Msg("competitor analysis failed")
		return publish(Result{Status: StatusFailed, Message: MsgFetchFailed, Err: err})
	}

	report := comparison.Compare(*yours, *theirs)
	s.record(true, 0)
	log.Info().
		Str("yourUrl", yourURL).
		Str("competitorUrl", competitorURL).
		Dur("elapsed", time.Since(start)).
		Msg("competitor analysis completed")
	return publish(Result{Status: StatusDone, Report: &report})
}

func (s *Service) record(ok bool, extractionFailures int) {
	if s.stats == nil {
		return
	}
	if ok {
		s.stats.IncrementStats(1, 0, 2, 0)
		return
	}
	s.stats.IncrementStats(0, 1, 2, extractionFailures)
}

func failures(errs ...error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
