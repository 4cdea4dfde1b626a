package applier

import (
	"errors"

	"grimm.is/presetctl/internal/preset"
	"grimm.is/presetctl/internal/subsystem"
)

var errNoRule = errors.New("no translation rule")

// step is one planned key.
type step struct {
	key   string // preset path, e.g. php.memory_limit
	kind  Kind
	name  string // directive or option name
	raw   string
	value string
	rule  subsystem.Rule
}

func (s step) outcome(status Status, err error) Outcome {
	value := s.value
	if value == "" {
		value = s.raw
	}
	return Outcome{Key: s.key, Kind: s.kind, Name: s.name, Value: value, Status: status, Err: err}
}

type plan struct {
	directives []step
	options    []step
	unmapped   []Outcome
}

func (p plan) empty() bool {
	return len(p.directives) == 0 && len(p.options) == 0
}

// buildPlan splits a preset into directive and option steps in declaration
// order. Cache keys without a translation rule become skipped outcomes.
func buildPlan(p *preset.Preset) plan {
	var pl plan
	for _, key := range p.Keys(preset.SectionPHP) {
		pl.directives = append(pl.directives, step{
			key:  preset.SectionPHP + "." + key,
			kind: KindDirective,
			name: key,
			raw:  p.Sections[preset.SectionPHP][key],
		})
	}
	for _, key := range p.Keys(preset.SectionCache) {
		raw := p.Sections[preset.SectionCache][key]
		rule, ok := subsystem.Lookup(key)
		if !ok {
			pl.unmapped = append(pl.unmapped, Outcome{
				Key:    preset.SectionCache + "." + key,
				Kind:   KindOption,
				Value:  raw,
				Status: StatusSkipped,
				Err:    errNoRule,
			})
			continue
		}
		pl.options = append(pl.options, step{
			key:  preset.SectionCache + "." + key,
			kind: KindOption,
			name: rule.Option,
			raw:  raw,
			rule: rule,
		})
	}
	return pl
}
