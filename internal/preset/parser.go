package preset

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"grimm.is/presetctl/internal/logging"
)

// Options controls parsing.
type Options struct {
	// Lenient skips unparsable lines instead of failing.
	Lenient bool
	Logger  *logging.Logger
}

// Parse reads and parses the preset file at path.
func Parse(path string, opts Options) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}
	return ParseBytes(data, path, opts)
}

// ParseBytes parses preset content. source is used in errors only.
func ParseBytes(data []byte, source string, opts Options) (*Preset, error) {
	p := newPreset(source)
	section := ""

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		raw := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(raw)

		// Blank lines and comments never close a section.
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		indented := raw[0] == ' ' || raw[0] == '\t'
		if !indented {
			section = ""
		}

		key, rest, found := strings.Cut(trimmed, ":")
		if !found {
			if err := p.reject(opts, lineNum, raw, "missing ':'"); err != nil {
				return nil, err
			}
			continue
		}
		key = strings.TrimSpace(key)
		rest = strings.TrimSpace(rest)
		// A top-level key followed only by a comment is a section header.
		if !indented && strings.HasPrefix(rest, "#") {
			rest = ""
		}
		if !isIdentifier(key, indented && section != "") {
			if err := p.reject(opts, lineNum, raw, "invalid key"); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case !indented && rest == "":
			section = key
			p.openSection(key)
		case indented && section != "":
			p.setSection(section, key, unquote(rest))
		default:
			p.setFlat(key, unquote(rest))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading preset %s: %w", source, err)
	}

	p.Name = p.Flat["name"]
	p.Description = p.Flat["description"]
	return p, nil
}

func (p *Preset) reject(opts Options, line int, text, reason string) error {
	if !opts.Lenient {
		return &ParseError{Source: p.Source, Line: line, Text: text, Reason: reason}
	}
	p.Skipped = append(p.Skipped, SkippedLine{Line: line, Text: text, Reason: reason})
	logging.Or(opts.Logger).Warn("skipping preset line", "source", p.Source, "line", line, "reason", reason)
	return nil
}

// isIdentifier matches [A-Za-z_][A-Za-z0-9_-]*. Keys inside a section may
// also contain dots, as in opcache.enable.
func isIdentifier(s string, dotted bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
		if i == 0 {
			if !letter {
				return false
			}
			continue
		}
		if !(letter || c >= '0' && c <= '9' || c == '-' || dotted && c == '.') {
			return false
		}
	}
	return true
}

// unquote removes one matching pair of surrounding quotes.
func unquote(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if first == last && (first == '"' || first == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
