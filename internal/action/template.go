package action

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// Template is a message body with a declared required-variable set.
	// Placeholders use {{name}} form.
	Template struct {
		ID       api.TemplateID `json:"id"`
		Body     string         `json:"body"`
		Required []string       `json:"required,omitempty"`
	}

	// TemplateStore holds registered message templates
	TemplateStore struct {
		mu        sync.RWMutex
		templates map[api.TemplateID]*Template
	}
)

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_.]+)\}\}`)

// NewTemplateStore creates an empty template store
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: map[api.TemplateID]*Template{}}
}

// Register validates and stores a template
func (s *TemplateStore) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("%w: template id is required", api.ErrValidation)
	}
	if t.Body == "" {
		return fmt.Errorf("%w: template %q has no body",
			api.ErrValidation, t.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = t
	return nil
}

// Get returns the template with the given ID
func (s *TemplateStore) Get(id api.TemplateID) (*Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	return t, ok
}

// Render substitutes variables into the template body. Missing required
// variables and unresolved placeholders fail fast rather than rendering
// literal placeholder text.
func (s *TemplateStore) Render(
	id api.TemplateID, vars api.Payload,
) (string, error) {
	t, ok := s.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: unknown template %q",
			api.ErrActionExecution, id)
	}

	for _, name := range t.Required {
		if _, ok := vars[name]; !ok {
			return "", fmt.Errorf(
				"%w: template %q missing required variable %q",
				api.ErrActionExecution, id, name)
		}
	}

	var missing string
	body := placeholderPattern.ReplaceAllStringFunc(t.Body,
		func(m string) string {
			name := placeholderPattern.FindStringSubmatch(m)[1]
			v, ok := vars[name]
			if !ok {
				if missing == "" {
					missing = name
				}
				return m
			}
			return fmt.Sprintf("%v", v)
		})
	if missing != "" {
		return "", fmt.Errorf("%w: template %q missing variable %q",
			api.ErrActionExecution, id, missing)
	}
	return body, nil
}
