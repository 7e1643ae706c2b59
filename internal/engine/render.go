package engine

import (
	"bytes"
	"sort"
	"strings"

	"github.com/agentx-labs/stencil/internal/template"
	"golang.org/x/text/encoding/unicode"
)

// Substitution replaces {{key}} tokens with answers. Tokens for keys
// without an answer are left untouched.
type Substitution struct {
	r *strings.Replacer
}

// NewSubstitution builds a Substitution for answers. Both {{key}} and
// {{ key }} spellings are replaced.
func NewSubstitution(answers map[string]string) *Substitution {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*4)
	for _, k := range keys {
		v := answers[k]
		pairs = append(pairs, "{{"+k+"}}", v, "{{ "+k+" }}", v)
	}
	return &Substitution{r: strings.NewReplacer(pairs...)}
}

// String substitutes tokens in s.
func (s *Substitution) String(v string) string {
	return s.r.Replace(v)
}

// Bytes substitutes tokens in content. UTF-16 text marked with a byte order
// mark is decoded, substituted and re-encoded in the same byte order. Other
// content holding a NUL byte is treated as binary and returned unchanged.
func (s *Substitution) Bytes(content []byte) []byte {
	if endian, ok := utf16BOM(content); ok {
		return s.utf16(content, endian)
	}
	if IsBinary(content) {
		return content
	}
	return []byte(s.r.Replace(string(content)))
}

func (s *Substitution) utf16(content []byte, endian unicode.Endianness) []byte {
	decoded, err := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder().Bytes(content)
	if err != nil {
		return content
	}
	replaced := s.r.Replace(string(decoded))
	if replaced == string(decoded) {
		return content
	}
	encoded, err := unicode.UTF16(endian, unicode.UseBOM).NewEncoder().Bytes([]byte(replaced))
	if err != nil {
		return content
	}
	return encoded
}

// IsBinary reports whether content looks like a binary file: it holds a NUL
// byte and does not start with a UTF-16 byte order mark.
func IsBinary(content []byte) bool {
	if _, ok := utf16BOM(content); ok {
		return false
	}
	return bytes.IndexByte(content, 0) >= 0
}

func utf16BOM(content []byte) (unicode.Endianness, bool) {
	switch {
	case bytes.HasPrefix(content, []byte{0xFF, 0xFE}):
		return unicode.LittleEndian, true
	case bytes.HasPrefix(content, []byte{0xFE, 0xFF}):
		return unicode.BigEndian, true
	}
	return unicode.BigEndian, false
}

// rendered is one entry after substitution.
type rendered struct {
	Source  string
	Path    string
	Content []byte
	Perm    uint32
}

func renderEntry(sub *Substitution, e *template.Entry) rendered {
	return rendered{
		Source:  e.Path,
		Path:    sub.String(e.Path),
		Content: sub.Bytes(e.Content),
		Perm:    uint32(e.Perm()),
	}
}
