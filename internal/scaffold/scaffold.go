package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/agentx-labs/stencil/internal/specification"
)

const templatesDir = "scaffolds/starter"

// Data holds the variables available to scaffold files. Scaffold files use
// [[ ]] delimiters so that {{ }} placeholder tokens pass through untouched.
type Data struct {
	Name     string // template name, also the default project name
	Requires string // version constraint written to the document, may be empty
	Year     int
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string // slash paths relative to OutputDir
	Warnings  []string
}

// NewData returns Data for name. When version is a release version the
// generated document requires at least that version.
func NewData(name, version string) *Data {
	d := &Data{Name: name, Year: time.Now().Year()}
	if v, err := semver.NewVersion(version); err == nil && v.Prerelease() == "" {
		d.Requires = ">= " + v.String()
	}
	return d
}

// Generate writes the starter template to outputDir, which must be empty or
// absent.
func Generate(data *Data, outputDir string) (*Result, error) {
	if strings.TrimSpace(data.Name) == "" {
		return nil, errors.New("template name is required")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// Check for existing files to prevent accidental overwrites.
	existing, err := os.ReadDir(outputDir)
	if err == nil && len(existing) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", outputDir)
	}

	result := &Result{OutputDir: outputDir}

	err = fs.WalkDir(scaffoldFS, templatesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		tmplBytes, err := fs.ReadFile(scaffoldFS, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}

		rel := strings.TrimPrefix(p, templatesDir+"/")
		outName := strings.TrimSuffix(rel, ".tmpl")

		tmpl, err := template.New(path.Base(p)).Delims("[[", "]]").Parse(string(tmplBytes))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", rel, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("executing template %s: %w", rel, err)
		}

		outPath := filepath.Join(outputDir, filepath.FromSlash(outName))
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}

		result.Files = append(result.Files, outName)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Validate the generated specification document.
	docPath := filepath.Join(outputDir, specification.FileName)
	doc, err := os.ReadFile(docPath)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not read specification: %v", err))
		return result, nil
	}
	if _, err := specification.Parse(doc, specification.FileName); err != nil {
		var parseErr *specification.ParseError
		if errors.As(err, &parseErr) && len(parseErr.Issues) > 0 {
			for _, issue := range parseErr.Issues {
				result.Warnings = append(result.Warnings, issue.String())
			}
		} else {
			result.Warnings = append(result.Warnings, err.Error())
		}
	}

	return result, nil
}
