// Package tass fetches news headlines from the TASS content feed. Each fetch
// picks one rubric at random and pages through it; items carrying both a
// title and a lead are formatted as "title: lead".
package tass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/newslens/internal/config"
	"github.com/sethvargo/go-retry"
)

const (
	sortOrder    = "-es_updated_dt"
	maxErrorBody = 4 << 10
)

// ErrUnexpectedStatus is returned for non-2xx feed responses.
var ErrUnexpectedStatus = errors.New("unexpected status from TASS feed")

type feedItem struct {
	Title *string `json:"title"`
	Lead  *string `json:"lead"`
}

type feedPage struct {
	Result []feedItem `json:"result"`
}

// Source is a source.TextSource backed by the TASS feed.
// It is safe for concurrent use.
type Source struct {
	baseURL    string
	pages      int
	pageSize   int
	lang       string
	rubrics    []string
	maxRetries int
	baseDelay  time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	pick       func(n int) int
}

// NewSource creates a TASS source from configuration.
func NewSource(cfg config.TASSConfig, logger *slog.Logger) (*Source, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("tass base URL cannot be empty")
	}
	if len(cfg.Rubrics) == 0 {
		return nil, errors.New("at least one tass rubric is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	pages, pageSize := cfg.Pages, cfg.PageSize
	if pages < 1 {
		pages = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	rubrics := make([]string, len(cfg.Rubrics))
	copy(rubrics, cfg.Rubrics)

	return &Source{
		baseURL:    cfg.BaseURL,
		pages:      pages,
		pageSize:   pageSize,
		lang:       cfg.Lang,
		rubrics:    rubrics,
		maxRetries: cfg.MaxRetries,
		baseDelay:  500 * time.Millisecond,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "tass_source"),
		pick:       rand.IntN,
	}, nil
}

// Fetch walks the configured number of pages of one randomly chosen rubric
// and returns the formatted items. A page that keeps failing ends the walk; whatever was collected so
// far is returned. Only context cancellation is reported as an error.
func (s *Source) Fetch(ctx context.Context) ([]string, error) {
	items := make([]string, 0, s.pages*s.pageSize)
	rubric := s.rubrics[s.pick(len(s.rubrics))]

	for page := 0; page < s.pages; page++ {
		offset := page * s.pageSize
		batch, err := s.fetchPage(ctx, rubric, offset)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.WarnContext(ctx, "failed to fetch TASS page, returning partial batch",
				"rubric", rubric,
				"offset", offset,
				"collected", len(items),
				"error", err)
			break
		}
		if len(batch) == 0 {
			break
		}

		for _, it := range batch {
			if it.Title == nil || it.Lead == nil {
				continue
			}
			items = append(items, *it.Title+": "+*it.Lead)
		}
	}

	s.logger.DebugContext(ctx, "fetched TASS items", "rubric", rubric, "count", len(items))
	return items, nil
}

func (s *Source) fetchPage(ctx context.Context, rubric string, offset int) ([]feedItem, error) {
	backoff := retry.NewExponential(s.baseDelay)
	backoff = retry.WithJitterPercent(25, backoff)
	backoff = retry.WithMaxRetries(uint64(s.maxRetries), backoff)

	var page feedPage
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, retryable, err := s.get(ctx, rubric, offset)
		if err != nil {
			if retryable {
				return retry.RetryableError(err)
			}
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page.Result, nil
}

// get performs one page request and reports whether a failure is worth
// retrying.
func (s *Source) get(ctx context.Context, rubric string, offset int) (feedPage, bool, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(s.pageSize))
	q.Set("offset", strconv.Itoa(offset))
	if s.lang != "" {
		q.Set("lang", s.lang)
	}
	q.Set("rubrics", rubric)
	q.Set("sort", sortOrder)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return feedPage{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return feedPage{}, ctx.Err() == nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return feedPage{}, retryable, fmt.Errorf("%w: status %d: %s",
			ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page feedPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return feedPage{}, false, fmt.Errorf("failed to decode response: %w", err)
	}
	return page, false, nil
}
