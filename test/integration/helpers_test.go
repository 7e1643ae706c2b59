//go:build integration

package integration_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir     string // HOME, holds ~/.stencil
	TemplateDir string // a local template
	DestDir     string // parent of generated projects
}

// setupTestEnv creates isolated temp directories and points HOME at one of
// them so stencil configuration is sandboxed.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:     t.TempDir(),
		TemplateDir: t.TempDir(),
		DestDir:     t.TempDir(),
	}
	t.Setenv("HOME", env.HomeDir)
	t.Setenv("STENCIL_HOME", "")
	return env
}

// serviceTemplate is a small template exercising single and multiple choice
// placeholders in both contents and paths.
var serviceTemplate = map[string]string{
	"stencil.yaml": `placeholders:
  - key: name
    message: Service name
    default: service
  - key: db
    message: Database
    type: multiple
    options: [postgres, sqlite]
`,
	"README.md":               "# {{name}}\n\nBacked by {{db}}.\n",
	"cmd/{{name}}/main.go":    "package main // {{name}}\n",
	"config/{{db}}.yaml":      "driver: {{ db }}\n",
	"assets/logo.bin":         "\x00\x01{{name}}",
	".git/should-not-be-read": "ignored",
}

// writeTemplate writes files under root.
func writeTemplate(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// setupTemplateRepo commits files to a fresh repository on the given
// branch and returns the repository path.
func setupTemplateRepo(t *testing.T, branch string, files map[string]string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	writeFile(t, filepath.Join(dir, "LICENSE"), "MIT")
	if _, err := wt.Add("LICENSE"); err != nil {
		t.Fatal(err)
	}
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()}
	head, err := wt.Commit("initial", &git.CommitOptions{Author: sig})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	ref := plumbing.NewBranchReferenceName(branch)
	if err := wt.Checkout(&git.CheckoutOptions{Branch: ref, Create: true, Hash: head}); err != nil {
		t.Fatalf("Checkout(%s): %v", branch, err)
	}
	for name, content := range files {
		if strings.HasPrefix(name, ".git/") {
			continue
		}
		writeFile(t, filepath.Join(dir, filepath.FromSlash(name)), content)
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	if _, err := wt.Commit("template", &git.CommitOptions{Author: sig}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return dir
}

// quietLogger returns a logger that records entries without printing.
func quietLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileEquals fails if the file doesn't exist or its content differs.
func assertFileEquals(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !bytes.Equal(data, []byte(want)) {
		t.Errorf("file %s = %q, want %q", path, data, want)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
