// Package file implements the configuration store on a TOML file in
// the fundfetch config directory.
package file
