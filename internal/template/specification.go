package template

// Kind distinguishes the two placeholder question types.
type Kind int

const (
	// SingleChoice accepts free text and falls back to a default.
	SingleChoice Kind = iota
	// MultipleChoice selects one of an ordered option list by 1-based index.
	MultipleChoice
)

// String returns the document name of the kind.
func (k Kind) String() string {
	switch k {
	case SingleChoice:
		return "single"
	case MultipleChoice:
		return "multiple"
	default:
		return "unknown"
	}
}

// PlaceholderItem is one named question whose answer replaces the
// {{Key}} token during rendering.
type PlaceholderItem struct {
	Key     string
	Message string
	Kind    Kind
	Default string   // SingleChoice only
	Options []string // MultipleChoice only

	Answer   string
	answered bool
}

// SetAnswer records the resolved answer. Prompts call it exactly once.
func (p *PlaceholderItem) SetAnswer(answer string) {
	p.Answer = answer
	p.answered = true
}

// Resolved reports whether SetAnswer has been called. An empty answer still
// counts as resolved.
func (p *PlaceholderItem) Resolved() bool {
	return p.answered
}

// Label returns the text shown when prompting: the message, or the key when
// no message was declared.
func (p *PlaceholderItem) Label() string {
	if p.Message != "" {
		return p.Message
	}
	return p.Key
}

// Specification is the ordered placeholder list declared by a template.
type Specification struct {
	Requires     string // optional semver constraint on the generator version
	Placeholders []*PlaceholderItem
}

// Answers returns key → answer for every resolved placeholder.
func (s *Specification) Answers() map[string]string {
	out := make(map[string]string, len(s.Placeholders))
	for _, p := range s.Placeholders {
		if p.Resolved() {
			out[p.Key] = p.Answer
		}
	}
	return out
}

// Unresolved returns the keys of placeholders that have no answer.
func (s *Specification) Unresolved() []string {
	var keys []string
	for _, p := range s.Placeholders {
		if !p.Resolved() {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// Configuration pairs a loaded tree with its specification.
type Configuration struct {
	Tree          *FileTree
	Specification *Specification
}

// RenderRequest is the input to the template engine.
type RenderRequest struct {
	Destination   string
	Configuration *Configuration
	Force         bool // overwrite files that already exist at the destination
}
