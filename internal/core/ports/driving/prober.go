package driving

import (
	"context"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
)

// Prober discovers which yearly dataset editions exist on the site.
type Prober interface {
	// DetectYears probes each year from the current year down to the
	// first published edition and returns the available ones, newest
	// first. Individual probe failures are logged and skipped. When no
	// year responds at all, a statically configured fallback range is
	// returned. Safe to call from any goroutine.
	DetectYears(ctx context.Context) []domain.Year
}
