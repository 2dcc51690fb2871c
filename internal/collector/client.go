package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"AhrSentinel/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// source is a JSON-over-HTTP data source guarded by a circuit breaker.
type source struct {
	name    string
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

func newSource(name, baseURL, proxyURL string, timeout time.Duration) *source {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "AhrSentinel/1.0")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}

	st := gobreaker.Settings{
		Name:     name,
		Interval: 10 * time.Minute,
		Timeout:  5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return &source{name: name, client: client, breaker: gobreaker.NewCircuitBreaker(st)}
}

// getJSON issues a GET and decodes a 200 response into out. Every failure is
// wrapped with model.ErrFetch.
func (s *source) getJSON(ctx context.Context, path string, query, headers map[string]string, out any) error {
	start := time.Now()
	_, err := s.breaker.Execute(func() (any, error) {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetHeaders(headers).
			Get(path)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() != 200 {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		log.Debug().Err(err).Str("source", s.name).Str("path", path).Dur("took", time.Since(start)).
			Msg("request failed")
		return fmt.Errorf("%s: %w: %w", s.name, model.ErrFetch, err)
	}
	log.Debug().Str("source", s.name).Str("path", path).Dur("took", time.Since(start)).Msg("request ok")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// flexFloat decodes a JSON number or a numeric string. NaN and infinities are
// rejected.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("empty number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non-finite number %q", s)
	}
	*f = flexFloat(v)
	return nil
}
