// Package schema holds the questionnaire section definitions. The registry is
// built once at startup and passed by value to the components that need it;
// nothing mutates it after Load.
package schema

import (
	"errors"
	"strings"
)

// FieldType enumerates the input kinds the form renderer understands.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldPhone       FieldType = "phone"
	FieldEmail       FieldType = "email"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multi-select"
	FieldFile        FieldType = "file"
	FieldRepeater    FieldType = "repeater"
)

// ItemField is the minimal type descriptor for one sub-field of a repeater row.
type ItemField struct {
	Type     FieldType
	Options  []string
	Required bool
}

// FieldDefinition describes one form field within a section.
type FieldDefinition struct {
	Name       string
	Label      string
	Type       FieldType
	Required   bool
	Options    []string             // select / multi-select
	ItemSchema map[string]ItemField // repeater
	HelpText   string
}

// SectionSchema is one topic of the questionnaire.
type SectionSchema struct {
	ID          string
	Title       string
	Description string
	Fields      []FieldDefinition
}

// Registry maps section ids to schemas and fixes the canonical section order.
type Registry struct {
	order    []string
	sections map[string]SectionSchema
}

// ErrUnknownSection is returned for ids the registry does not know. Callers
// are expected to degrade ("unknown section"), not crash.
var ErrUnknownSection = errors.New("unknown section")

// Load builds the registry of the ten canonical sections.
func Load() Registry {
	sections := map[string]SectionSchema{}
	order := make([]string, 0, len(canonicalSections))
	for _, s := range canonicalSections {
		order = append(order, s.ID)
		sections[s.ID] = s
	}
	return Registry{order: order, sections: sections}
}

// SectionIDs returns the canonical section order. The returned slice is a
// copy; callers may not mutate registry state through it.
func (r Registry) SectionIDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Section looks up a section schema by id.
func (r Registry) Section(id string) (SectionSchema, error) {
	s, ok := r.sections[id]
	if !ok {
		return SectionSchema{}, ErrUnknownSection
	}
	return s, nil
}

// Has reports whether id names a known section.
func (r Registry) Has(id string) bool {
	_, ok := r.sections[id]
	return ok
}

// Len returns the number of canonical sections.
func (r Registry) Len() int {
	return len(r.order)
}

// TitleMap returns section id -> display title for every known section.
func (r Registry) TitleMap() map[string]string {
	titles := make(map[string]string, len(r.sections))
	for id, s := range r.sections {
		titles[id] = s.Title
	}
	return titles
}

// HumanizeID derives a display title from a dash-separated section id, for
// ids with no registered title: "hospital-info" -> "Hospital Info".
func HumanizeID(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
