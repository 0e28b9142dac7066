package services

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driving"
	"github.com/brimr-tools/fundfetch/internal/logger"
)

// Ensure Prober implements the interface.
var _ driving.Prober = (*Prober)(nil)

const (
	// headProbeTimeout bounds the cheap HEAD existence check.
	headProbeTimeout = 6 * time.Second

	// getProbeTimeout bounds the streaming GET fallback.
	getProbeTimeout = 8 * time.Second

	// probesPerSecond throttles the year scan so it stays polite.
	probesPerSecond = 4

	// probeUserAgent mirrors a desktop browser; the site serves 403 to
	// obvious bots.
	probeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36"
)

// Fallback year range used when probing finds nothing at all.
const (
	defaultFallbackFirstYear = 2006
	defaultFallbackLastYear  = 2024
)

// Prober determines which yearly dataset editions exist by issuing
// lightweight existence checks against the year-templated page URL.
// Safe to invoke from any goroutine; probes run sequentially within
// one DetectYears call.
type Prober struct {
	client  *http.Client
	limiter *rate.Limiter
	config  driven.ConfigStore

	// urlFor and now are swapped out in tests.
	urlFor func(domain.Year) string
	now    func() time.Time
}

// NewProber creates a prober. The config store supplies the fallback
// year range; it may be nil, in which case built-in defaults apply.
func NewProber(config driven.ConfigStore) *Prober {
	return &Prober{
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(probesPerSecond), 1),
		config:  config,
		urlFor:  func(y domain.Year) string { return y.PageURL() },
		now:     time.Now,
	}
}

// DetectYears probes each year from the current year down to the first
// published edition. A year is available iff a final 200 status is
// observed by either the HEAD check or, on 403/405, the streaming GET
// retry. Per-year failures are logged and skipped; they never abort
// the scan. Returns available years newest first, or the configured
// fallback range when nothing responds.
func (p *Prober) DetectYears(ctx context.Context) []domain.Year {
	current := domain.Year(p.now().Year())
	logger.Info("Probing for available years (%d down to %d)", int(current), int(domain.FirstYear))

	var years []domain.Year
	for y := current; y >= domain.FirstYear; y-- {
		if ctx.Err() != nil {
			break
		}
		if err := p.limiter.Wait(ctx); err != nil {
			break
		}
		if p.probeYear(ctx, y) {
			years = append(years, y)
		}
	}

	if len(years) == 0 {
		first, last := p.fallbackRange()
		logger.Warn("Could not detect years, using known range %d-%d", int(first), int(last))
		return domain.YearRange(first, last)
	}

	logger.Info("Detected %d years: %d-%d",
		len(years), int(years[len(years)-1]), int(years[0]))
	return years
}

// probeYear issues the existence checks for one year.
func (p *Prober) probeYear(ctx context.Context, year domain.Year) bool {
	url := p.urlFor(year)

	status, err := p.check(ctx, http.MethodHead, url, headProbeTimeout)
	if err != nil {
		logger.Debug("year %d probe failed: %v", int(year), err)
		return false
	}

	switch {
	case status == http.StatusOK:
		logger.Debug("year %d exists (HEAD)", int(year))
		return true
	case status == http.StatusForbidden || status == http.StatusMethodNotAllowed:
		// Some servers reject HEAD; retry with a GET whose body is
		// discarded as soon as the status line is known.
		status, err = p.check(ctx, http.MethodGet, url, getProbeTimeout)
		if err != nil {
			logger.Debug("year %d GET fallback failed: %v", int(year), err)
			return false
		}
		if status == http.StatusOK {
			logger.Debug("year %d exists (GET fallback)", int(year))
			return true
		}
	}
	return false
}

// check performs one request and returns the final status code after
// redirects. The response body is closed without being read, aborting
// any transfer immediately.
func (p *Prober) check(ctx context.Context, method, url string, timeout time.Duration) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", probeUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// fallbackRange reads the static fallback bounds from configuration.
func (p *Prober) fallbackRange() (first, last domain.Year) {
	first, last = defaultFallbackFirstYear, defaultFallbackLastYear
	if p.config == nil {
		return first, last
	}
	if v := p.config.GetInt(driven.ConfigFallbackFirstYear); v > 0 {
		first = domain.Year(v)
	}
	if v := p.config.GetInt(driven.ConfigFallbackLastYear); v > 0 {
		last = domain.Year(v)
	}
	return first, last
}
