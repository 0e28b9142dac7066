package driven

import "context"

// BrowserFactory launches browser sessions. A session is acquired once
// per run and released on every exit path.
type BrowserFactory interface {
	// Launch starts a browser session that saves file transfers into
	// stagingDir. When headless is true no window is shown.
	Launch(ctx context.Context, stagingDir string, headless bool) (BrowserSession, error)
}

// BrowserSession is the long-lived page/link provider and transfer
// trigger for one run. The core depends only on this narrow contract,
// not on how rendering happens.
//
// Sessions are not safe for concurrent use; the orchestrator drives
// one transfer at a time by design.
type BrowserSession interface {
	// DocumentLinks navigates to a page, waits for it to render, and
	// returns the hyperlinks visible on it. Returns an error wrapping
	// domain.ErrNavigation if the page fails to load.
	DocumentLinks(ctx context.Context, pageURL string) ([]string, error)

	// StartTransfer initiates a file transfer for the given URL into
	// the session's staging directory. The transfer is asynchronous:
	// completion is observed only via filesystem polling, never via a
	// callback from the transfer mechanism.
	StartTransfer(ctx context.Context, url string) error

	// Close releases the session. Safe to call more than once.
	Close() error
}
