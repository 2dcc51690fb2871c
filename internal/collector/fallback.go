package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"AhrSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// FallbackSpot tries each spot fetcher in order and returns the first price.
type FallbackSpot struct {
	Fetchers []SpotFetcher
}

// NewFallbackSpot creates a FallbackSpot over fetchers.
func NewFallbackSpot(fetchers ...SpotFetcher) *FallbackSpot {
	return &FallbackSpot{Fetchers: fetchers}
}

func (f *FallbackSpot) Name() string {
	names := make([]string, len(f.Fetchers))
	for i, sf := range f.Fetchers {
		names[i] = sf.Name()
	}
	return strings.Join(names, ">")
}

func (f *FallbackSpot) FetchSpotPrice(ctx context.Context) (float64, error) {
	if len(f.Fetchers) == 0 {
		return 0, fmt.Errorf("%w: no spot source configured", model.ErrFetch)
	}
	var errs []error
	for _, sf := range f.Fetchers {
		price, err := sf.FetchSpotPrice(ctx)
		if err == nil {
			return price, nil
		}
		log.Warn().Err(err).Str("source", sf.Name()).Msg("spot price fetch failed, trying next source")
		errs = append(errs, err)
	}
	return 0, errors.Join(errs...)
}
