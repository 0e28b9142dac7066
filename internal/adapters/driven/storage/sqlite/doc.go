// Package sqlite implements run history persistence on an embedded
// SQLite database. The driver is pure Go, so no cgo toolchain is
// required to build or run.
package sqlite
