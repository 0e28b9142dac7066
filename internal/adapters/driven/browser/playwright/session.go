package playwright

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
	"github.com/brimr-tools/fundfetch/internal/logger"
)

// DefaultPageTimeout bounds a single page navigation.
const DefaultPageTimeout = 30 * time.Second

// inProgressSuffix marks a download still being written to staging.
// It matches one of the in-progress extensions the completion watcher
// recognises.
const inProgressSuffix = ".part"

// Ensure Factory implements the interface.
var _ driven.BrowserFactory = (*Factory)(nil)

// Install downloads the Playwright driver and browsers when missing.
// Call once before the first Launch; subsequent calls are cheap.
func Install() error {
	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}

// Factory launches Chromium sessions via Playwright. The driver and
// browser binaries are installed on first launch when missing.
type Factory struct {
	pageTimeout time.Duration

	installOnce sync.Once
	installErr  error
}

// NewFactory creates a browser factory. A non-positive pageTimeout
// falls back to DefaultPageTimeout.
func NewFactory(pageTimeout time.Duration) *Factory {
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	return &Factory{pageTimeout: pageTimeout}
}

// Launch starts Playwright, a Chromium instance and a single page that
// saves its downloads into stagingDir.
func (f *Factory) Launch(ctx context.Context, stagingDir string, headless bool) (driven.BrowserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.installOnce.Do(func() {
		f.installErr = Install()
	})
	if f.installErr != nil {
		return nil, fmt.Errorf("installing playwright driver: %w", f.installErr)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		AcceptDownloads: playwright.Bool(true),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("creating page: %w", err)
	}
	page.SetDefaultTimeout(float64(f.pageTimeout.Milliseconds()))

	s := &Session{
		pw:         pw,
		browser:    browser,
		page:       page,
		stagingDir: stagingDir,
	}

	// Every download the page produces is funneled into staging. The
	// handler runs on Playwright's event goroutine; saving happens on a
	// separate one so events keep flowing.
	page.OnDownload(func(d playwright.Download) {
		go s.saveDownload(d)
	})

	return s, nil
}

// Ensure Session implements the interface.
var _ driven.BrowserSession = (*Session)(nil)

// Session is one Chromium page reused for the whole run.
type Session struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	page       playwright.Page
	stagingDir string

	closeOnce sync.Once
	closeErr  error
}

// DocumentLinks navigates to pageURL and returns the href of every
// anchor on it, resolved against the page URL.
func (s *Session) DocumentLinks(ctx context.Context, pageURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNavigation, pageURL, err)
	}

	anchors, err := s.page.Locator("a[href]").All()
	if err != nil {
		return nil, fmt.Errorf("%w: reading anchors on %s: %v", domain.ErrNavigation, pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var links []string
	for _, anchor := range anchors {
		href, err := anchor.GetAttribute("href")
		if err != nil {
			logger.Debug("could not get href attribute: %v", err)
			continue
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		if ref, err := url.Parse(href); err == nil {
			href = base.ResolveReference(ref).String()
		}
		links = append(links, href)
	}

	return links, nil
}

// StartTransfer navigates to a file URL and returns once Chromium has
// begun the download. The bytes land in the staging directory via the
// OnDownload handler; completion is observed there, not here.
func (s *Session) StartTransfer(ctx context.Context, fileURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.page.ExpectDownload(func() error {
		// Navigating straight at a file aborts the navigation with
		// net::ERR_ABORTED once the download starts; that is the
		// expected outcome, not a failure.
		if _, gerr := s.page.Goto(fileURL); gerr != nil {
			logger.Debug("navigation to %s interrupted by download: %v", fileURL, gerr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("no download started for %s: %w", fileURL, err)
	}
	return nil
}

// saveDownload copies a finished download into staging under an
// in-progress name and renames it once the copy is complete.
func (s *Session) saveDownload(d playwright.Download) {
	name := domain.SanitizeFilename(d.SuggestedFilename())
	if name == "" {
		name = domain.FilenameFromURL(d.URL())
	}
	if name == "" {
		logger.Warn("download from %s has no usable filename", d.URL())
		return
	}

	partial := filepath.Join(s.stagingDir, name+inProgressSuffix)
	final := filepath.Join(s.stagingDir, name)

	if err := d.SaveAs(partial); err != nil {
		logger.Warn("save download %s: %v", name, err)
		_ = os.Remove(partial)
		return
	}
	if err := os.Rename(partial, final); err != nil {
		logger.Warn("finalize download %s: %v", name, err)
	}
}

// Close tears down the page, the browser and the Playwright driver.
// Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.page.Close(); err != nil {
			s.closeErr = err
		}
		if err := s.browser.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
		if err := s.pw.Stop(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}
