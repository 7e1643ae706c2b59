// Package prompt resolves placeholder answers. Console asks on a line-based
// reader/writer pair, Survey drives an interactive terminal UI, and Preset
// answers programmatically from supplied values.
package prompt
