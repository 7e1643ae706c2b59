// Package config manages user-level settings stored at ~/.stencil/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the render worker count and the default prompt style.
package config
