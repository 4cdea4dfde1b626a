package preset

import (
	"errors"
	"fmt"
	"strings"
)

// Section names understood by the applier and validator.
const (
	SectionPHP   = "php"
	SectionCache = "cache"
)

// KnownSections is the allow-list checked by StructurallyValidate.
var KnownSections = []string{SectionPHP, SectionCache}

var (
	ErrNotFound          = errors.New("preset not found")
	ErrParse             = errors.New("preset parse error")
	ErrInvalidPreset     = errors.New("invalid preset")
	ErrDirectoryNotFound = errors.New("preset directory not found")
)

// ParseError describes the first unparsable line of a preset file.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.Source, e.Line, e.Reason, e.Text)
}

// Is reports ErrParse so callers can match with errors.Is.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// SkippedLine is a line dropped by a lenient parse.
type SkippedLine struct {
	Line   int
	Text   string
	Reason string
}

// Preset is a named bundle of desired settings.
type Preset struct {
	Name        string
	Description string
	Source      string

	// Sections maps section name to key to raw value.
	Sections map[string]map[string]string
	// Flat holds keys outside any section, including name and description.
	Flat map[string]string

	Skipped []SkippedLine

	sectionOrder []string
	keyOrder     map[string][]string
	flatOrder    []string
}

func newPreset(source string) *Preset {
	return &Preset{
		Source:   source,
		Sections: make(map[string]map[string]string),
		Flat:     make(map[string]string),
		keyOrder: make(map[string][]string),
	}
}

func (p *Preset) openSection(name string) {
	if _, ok := p.Sections[name]; ok {
		return
	}
	p.Sections[name] = make(map[string]string)
	p.sectionOrder = append(p.sectionOrder, name)
}

func (p *Preset) setSection(section, key, value string) {
	p.openSection(section)
	if _, ok := p.Sections[section][key]; !ok {
		p.keyOrder[section] = append(p.keyOrder[section], key)
	}
	p.Sections[section][key] = value
}

func (p *Preset) setFlat(key, value string) {
	if _, ok := p.Flat[key]; !ok {
		p.flatOrder = append(p.flatOrder, key)
	}
	p.Flat[key] = value
}

// Get resolves "section.key" against Sections, or a bare key against Flat.
// The second result is false when nothing matches.
func (p *Preset) Get(path string) (string, bool) {
	if p == nil {
		return "", false
	}
	section, key, dotted := strings.Cut(path, ".")
	if !dotted {
		v, ok := p.Flat[path]
		return v, ok
	}
	keys, ok := p.Sections[section]
	if !ok {
		return "", false
	}
	v, ok := keys[key]
	return v, ok
}

// HasSection reports whether the section was declared, even if empty.
func (p *Preset) HasSection(name string) bool {
	_, ok := p.Sections[name]
	return ok
}

// SectionNames returns section names in declaration order.
func (p *Preset) SectionNames() []string {
	return append([]string(nil), p.sectionOrder...)
}

// Keys returns the keys of a section in order of first appearance.
func (p *Preset) Keys(section string) []string {
	return append([]string(nil), p.keyOrder[section]...)
}

// FlatKeys returns top-level keys in order of first appearance.
func (p *Preset) FlatKeys() []string {
	return append([]string(nil), p.flatOrder...)
}

// Len returns the number of sectioned settings.
func (p *Preset) Len() int {
	n := 0
	for _, keys := range p.Sections {
		n += len(keys)
	}
	return n
}
