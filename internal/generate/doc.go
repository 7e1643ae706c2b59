// Package generate orchestrates project creation: load the template
// configuration, resolve its placeholders, then render the tree into the
// destination.
package generate
