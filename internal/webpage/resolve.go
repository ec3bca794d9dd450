package webpage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/logger"
)

// ErrNoAboutSection means a URL was given but no company description could be
// taken from it.
var ErrNoAboutSection = errors.New("no about section found")

// Fetcher downloads a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// IsURL reports whether the input should be treated as a link to fetch.
func IsURL(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "http")
}

// Resolver replaces a URL input with the about text of the page behind it.
type Resolver struct {
	fetcher   Fetcher
	extractor AboutExtractor
	logger    *zap.Logger
}

func NewResolver(fetcher Fetcher, extractor AboutExtractor, log *zap.Logger) *Resolver {
	if extractor == nil {
		extractor = SectionExtractor{}
	}

	return &Resolver{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logger.OrNop(log),
	}
}

// Resolve returns input unchanged unless it is a URL. For URLs it returns the
// extracted about text and fromURL=true.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, bool, error) {
	if !IsURL(input) {
		return input, false, nil
	}

	url := strings.TrimSpace(input)
	if r.fetcher == nil {
		return "", true, fmt.Errorf("%w: fetching is not configured", ErrNoAboutSection)
	}

	page, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.logger.Warn("fetching company page failed", zap.String("url", url), zap.Error(err))
		return "", true, fmt.Errorf("%w: %w", ErrNoAboutSection, err)
	}

	about, ok := r.extractor.ExtractAbout(page)
	if !ok || strings.TrimSpace(about) == "" {
		r.logger.Info("company page has no about section", zap.String("url", url))
		return "", true, ErrNoAboutSection
	}

	r.logger.Debug("about section extracted", zap.String("url", url), zap.Int("length", len(about)))

	return about, true, nil
}
