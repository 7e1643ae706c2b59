package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/agentx-labs/stencil/internal/template"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
)

// request builds a render request for files with the given answers already
// resolved.
func request(t *testing.T, dest string, files map[string]string, answers map[string]string) template.RenderRequest {
	t.Helper()
	entries := make([]template.Entry, 0, len(files))
	for p, c := range files {
		entries = append(entries, template.Entry{Path: p, Content: []byte(c)})
	}
	tree, err := template.NewFileTree("/tpl", entries)
	if err != nil {
		t.Fatal(err)
	}

	spec := &template.Specification{}
	for k, v := range answers {
		item := &template.PlaceholderItem{Key: k}
		item.SetAnswer(v)
		spec.Placeholders = append(spec.Placeholders, item)
	}
	return template.RenderRequest{
		Destination:   dest,
		Configuration: &template.Configuration{Tree: tree, Specification: spec},
	}
}

func readAll(t *testing.T, fsys afero.Fs, root string) map[string]string {
	t.Helper()
	got := map[string]string{}
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		got[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestRenderAndPushSubstitutesContentAndPaths(t *testing.T) {
	fsys := afero.NewMemMapFs()
	req := request(t, "/out", map[string]string{
		"README.md":           "Hello {{name}}, in {{ lang }}!",
		"{{name}}/main.txt":   "{{name}}{{name}}",
		"src/{{lang}}/x.txt":  "x",
		"docs/untouched.md":   "plain",
		"docs/{{unknown}}.md": "keep {{unknown}} and {{ unknown }}",
		"docs/half.md":        "{{name} {name}} {{ name}}",
	}, map[string]string{"name": "demo", "lang": "go"})

	res, err := New(fsys, 4, quietLogger()).RenderAndPush(context.Background(), req)
	if err != nil {
		t.Fatalf("RenderAndPush: %v", err)
	}

	want := map[string]string{
		"README.md":           "Hello demo, in go!",
		"demo/main.txt":       "demodemo",
		"src/go/x.txt":        "x",
		"docs/untouched.md":   "plain",
		"docs/{{unknown}}.md": "keep {{unknown}} and {{ unknown }}",
		"docs/half.md":        "{{name} {name}} {{ name}}",
	}
	if diff := cmp.Diff(want, readAll(t, fsys, "/out")); diff != "" {
		t.Errorf("destination mismatch (-want +got):\n%s", diff)
	}
	if len(res.Written) != len(want) {
		t.Errorf("Written = %v", res.Written)
	}
	if res.Destination != "/out" {
		t.Errorf("Destination = %q", res.Destination)
	}
}

func TestRenderAndPushWrittenInTreeOrder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	req := request(t, "/out", map[string]string{"c": "", "a": "", "b/z": "", "b/a": ""}, nil)

	res, err := New(fsys, 2, quietLogger()).RenderAndPush(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b/a", "b/z", "c"}, res.Written); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderAndPushUnresolvedPlaceholderPassesThrough(t *testing.T) {
	fsys := afero.NewMemMapFs()
	req := request(t, "/out", map[string]string{"a.txt": "{{lang}}"}, nil)
	req.Configuration.Specification.Placeholders = []*template.PlaceholderItem{
		{Key: "lang", Kind: template.MultipleChoice, Options: []string{"go"}},
	}

	if _, err := New(fsys, 1, quietLogger()).RenderAndPush(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, fsys, "/out")["a.txt"]; got != "{{lang}}" {
		t.Errorf("content = %q", got)
	}
}

func TestRenderAndPushBinaryCopiedVerbatim(t *testing.T) {
	fsys := afero.NewMemMapFs()
	binary := "\x00\x01{{name}}\xff"
	req := request(t, "/out", map[string]string{"{{name}}.bin": binary}, map[string]string{"name": "demo"})

	if _, err := New(fsys, 1, quietLogger()).RenderAndPush(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, fsys, "/out")["demo.bin"]; got != binary {
		t.Errorf("binary content changed: %q", got)
	}
}

func TestRenderAndPushConflict(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/out/b.txt", []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}
	req := request(t, "/out", map[string]string{"a.txt": "a", "b.txt": "b"}, nil)

	_, err := New(fsys, 1, quietLogger()).RenderAndPush(context.Background(), req)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if conflict.Path != "b.txt" {
		t.Errorf("Path = %q", conflict.Path)
	}
	if !errors.Is(err, ErrDestinationConflict) {
		t.Error("expected errors.Is ErrDestinationConflict")
	}

	// Nothing is written when a conflict is found.
	if ok, _ := afero.Exists(fsys, "/out/a.txt"); ok {
		t.Error("a.txt written despite conflict")
	}

	req.Force = true
	if _, err := New(fsys, 1, quietLogger()).RenderAndPush(context.Background(), req); err != nil {
		t.Fatalf("forced render: %v", err)
	}
	if got := readAll(t, fsys, "/out")["b.txt"]; got != "b" {
		t.Errorf("b.txt = %q, want overwritten", got)
	}
}

func TestRenderAndPushPathEscape(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{name: "parent", answer: "../../etc"},
		{name: "absolute", answer: "/etc"},
		{name: "empty", answer: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			req := request(t, "/out", map[string]string{"{{dir}}/x": "x"}, map[string]string{"dir": tt.answer})

			_, err := New(fsys, 1, quietLogger()).RenderAndPush(context.Background(), req)
			var werr *WriteError
			if !errors.As(err, &werr) || !errors.Is(err, ErrPathEscape) {
				t.Fatalf("expected WriteError wrapping ErrPathEscape, got %v", err)
			}
		})
	}
}

func TestRenderAndPushAnswerCreatesSubdirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	req := request(t, "/out", map[string]string{"{{pkg}}/x": "x"}, map[string]string{"pkg": "com/acme"})

	if _, err := New(fsys, 1, quietLogger()).RenderAndPush(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, ok := readAll(t, fsys, "/out")["com/acme/x"]; !ok {
		t.Error("expected com/acme/x")
	}
}

func TestRenderAndPushPathCollision(t *testing.T) {
	fsys := afero.NewMemMapFs()
	req := request(t, "/out", map[string]string{"{{a}}.txt": "1", "{{b}}.txt": "2"}, map[string]string{"a": "same", "b": "same"})

	_, err := New(fsys, 1, quietLogger()).RenderAndPush(context.Background(), req)
	if !errors.Is(err, ErrPathCollision) {
		t.Fatalf("expected ErrPathCollision, got %v", err)
	}
}

// failingFs fails to open one file for writing.
type failingFs struct {
	afero.Fs
	fail string
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if filepath.Base(name) == f.fail {
		return nil, errors.New("disk full")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestRenderAndPushWriteFailureKeepsEarlierFiles(t *testing.T) {
	mem := afero.NewMemMapFs()
	fsys := &failingFs{Fs: mem, fail: "b.txt"}
	req := request(t, "/out", map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"}, nil)

	res, err := New(fsys, 1, quietLogger()).RenderAndPush(context.Background(), req)
	var werr *WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected *WriteError, got %v", err)
	}
	if werr.Path != "b.txt" || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"a.txt"}, res.Written); diff != "" {
		t.Errorf("Written mismatch (-want +got):\n%s", diff)
	}
	got := readAll(t, mem, "/out")
	if _, ok := got["a.txt"]; !ok {
		t.Error("a.txt should remain after failure")
	}
	if _, ok := got["c.txt"]; ok {
		t.Error("c.txt should not be written after failure")
	}
}

func TestRenderAndPushCanceled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	req := request(t, "/out", map[string]string{"a.txt": "a"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(fsys, 1, quietLogger()).RenderAndPush(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(res.Written) != 0 {
		t.Errorf("Written = %v", res.Written)
	}
}

func TestRenderAndPushPreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not supported on windows")
	}
	dest := t.TempDir()
	tree, err := template.NewFileTree("/tpl", []template.Entry{
		{Path: "run.sh", Content: []byte("#!/bin/sh"), Mode: 0755},
		{Path: "plain.txt", Content: []byte("x")},
	})
	if err != nil {
		t.Fatal(err)
	}
	req := template.RenderRequest{
		Destination:   filepath.Join(dest, "project"),
		Configuration: &template.Configuration{Tree: tree, Specification: &template.Specification{}},
	}

	if _, err := New(afero.NewOsFs(), 0, quietLogger()).RenderAndPush(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]os.FileMode{"run.sh": 0755, "plain.txt": 0644} {
		info, err := os.Stat(filepath.Join(dest, "project", name))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != want {
			t.Errorf("%s mode = %o, want %o", name, info.Mode().Perm(), want)
		}
	}
}
