package logging

import (
	"fmt"
	"strings"
)

// Spec is a logging specification: a base level plus optional
// per-component overrides.
//
// Format: "<base-level>[,<component>=<level>]..."
//
//	"info"                  base level info
//	"warn,tm=debug"         base warn, TM core at debug
//	"info,tm=debug,store=trace"
type Spec struct {
	BaseLevel  Level
	Components map[string]Level
}

// ParseSpec parses a log specification string. The empty string means
// info with no overrides.
func ParseSpec(s string) (Spec, error) {
	spec := Spec{
		BaseLevel:  LevelInfo,
		Components: make(map[string]Level),
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return spec, nil
	}

	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, "="); idx != -1 {
			component := strings.TrimSpace(part[:idx])
			if component == "" {
				return spec, fmt.Errorf("empty component name in %q", part)
			}
			level, err := ParseLevel(part[idx+1:])
			if err != nil {
				return spec, fmt.Errorf("invalid level for component %q: %w", component, err)
			}
			spec.Components[component] = level
			continue
		}
		// A bare level is the base level, valid only first.
		if i != 0 {
			return spec, fmt.Errorf("base level %q must be first in spec", part)
		}
		level, err := ParseLevel(part)
		if err != nil {
			return spec, err
		}
		spec.BaseLevel = level
	}

	return spec, nil
}

// LevelFor returns the effective level for a component: its override
// if present, otherwise the base level.
func (s *Spec) LevelFor(component string) Level {
	if level, ok := s.Components[component]; ok {
		return level
	}
	return s.BaseLevel
}

// String renders the spec in parseable form.
func (s *Spec) String() string {
	parts := []string{s.BaseLevel.String()}
	for component, level := range s.Components {
		parts = append(parts, fmt.Sprintf("%s=%s", component, level))
	}
	return strings.Join(parts, ",")
}
