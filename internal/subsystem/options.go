package subsystem

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var ErrInvalidValue = errors.New("invalid option value")

// Kind selects how a preset value is translated into an option value.
type Kind string

const (
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
	KindString Kind = "string"
)

// Rule maps one cache preset key onto a plugin option.
type Rule struct {
	Key    string
	Option string
	Kind   Kind
}

var rules = map[string]Rule{
	"page_cache":       {"page_cache", "pagecache_enabled", KindBool},
	"object_cache":     {"object_cache", "objectcache_enabled", KindBool},
	"browser_cache":    {"browser_cache", "browsercache_enabled", KindBool},
	"minify_html":      {"minify_html", "minify_html", KindBool},
	"minify_css":       {"minify_css", "minify_css", KindBool},
	"minify_js":        {"minify_js", "minify_js", KindBool},
	"gzip":             {"gzip", "gzip_enabled", KindBool},
	"preload":          {"preload", "preload_enabled", KindBool},
	"ttl":              {"ttl", "pagecache_ttl", KindNumber},
	"preload_interval": {"preload_interval", "preload_interval", KindNumber},
	"exclude_urls":     {"exclude_urls", "pagecache_exclude_urls", KindString},
}

// Lookup returns the rule for a cache preset key.
func Lookup(key string) (Rule, bool) {
	r, ok := rules[key]
	return r, ok
}

// Rules returns every translation rule sorted by preset key.
func Rules() []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

var numberRe = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Translate converts a raw preset value to the literal the option expects.
func (r Rule) Translate(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	switch r.Kind {
	case KindBool:
		switch strings.ToLower(v) {
		case "true", "yes", "on", "1", "enabled":
			return "1", nil
		case "false", "no", "off", "0", "disabled":
			return "0", nil
		}
		return "", fmt.Errorf("%w: %s expects a boolean, got %q", ErrInvalidValue, r.Key, raw)
	case KindNumber:
		if !numberRe.MatchString(v) {
			return "", fmt.Errorf("%w: %s expects a number, got %q", ErrInvalidValue, r.Key, raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}
