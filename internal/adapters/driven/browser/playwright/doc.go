// Package playwright implements the browser ports on a Playwright
// driven Chromium instance. Downloads are materialised in the staging
// directory with an in-progress suffix and renamed on completion, so
// the completion watcher observes the same lifecycle a plain browser
// download would produce.
package playwright
