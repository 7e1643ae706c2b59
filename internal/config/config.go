package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/agentx-labs/stencil/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized configuration keys.
const (
	KeyRenderWorkers = "render.workers"
	KeyPromptStyle   = "prompt.style"
	KeyRemoteTmpDir  = "remote.tmp_dir"
	KeyWatchDebounce = "watch.debounce"
)

// Prompt styles accepted by KeyPromptStyle.
const (
	PromptStyleLine   = "line"
	PromptStyleSurvey = "survey"
)

// Dir returns the path to the config directory: $STENCIL_HOME when set,
// otherwise ~/.stencil/.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.stencil/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// Nested keys map to env vars with dots replaced, e.g. render.workers is
// read from STENCIL_RENDER_WORKERS.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyRenderWorkers, runtime.NumCPU())
	viper.SetDefault(KeyPromptStyle, PromptStyleLine)
	viper.SetDefault(KeyRemoteTmpDir, "")
	viper.SetDefault(KeyWatchDebounce, "300ms")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Workers returns the render worker count, never less than one.
func Workers() int {
	n := viper.GetInt(KeyRenderWorkers)
	if n < 1 {
		return 1
	}
	return n
}

// PromptStyle returns the configured prompt style, falling back to line
// prompts for unknown values.
func PromptStyle() string {
	switch s := viper.GetString(KeyPromptStyle); s {
	case PromptStyleSurvey:
		return s
	default:
		return PromptStyleLine
	}
}

// RemoteTmpDir returns the parent directory for remote clones. Empty means
// the system temp directory.
func RemoteTmpDir() string {
	return viper.GetString(KeyRemoteTmpDir)
}

// WatchDebounce returns how long watch mode waits for a burst of file
// events to settle before re-rendering.
func WatchDebounce() time.Duration {
	d := viper.GetDuration(KeyWatchDebounce)
	if d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
