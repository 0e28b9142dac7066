// Package domain contains the core business types for fundfetch:
// years, categories, filename handling, download tasks, and the
// status events emitted during a fetch run.
//
// The domain layer has no dependencies on adapters or external
// libraries. Classification and sanitisation are pure functions over
// the static category table.
package domain
