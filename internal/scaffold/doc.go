// Package scaffold generates a starter template from embedded files. It
// powers the "stencil new" command, producing a specification document, a
// README, and a sample source file that already use placeholder tokens.
package scaffold
