// Package watch re-runs a callback whenever files under a template
// directory change.
package watch
