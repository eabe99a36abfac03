package matching

import (
	"fmt"
	"regexp"
	"strings"
)

// RegionalMatcher holds the compiled locale configuration of the
// regional fit factor.
type RegionalMatcher struct {
	placeNames []string
	script     *regexp.Regexp
}

// NewRegionalMatcher compiles a matcher. An empty pattern disables the
// script bonus.
func NewRegionalMatcher(cfg RegionalConfig) (*RegionalMatcher, error) {
	m := &RegionalMatcher{}
	for _, name := range cfg.PlaceNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			m.placeNames = append(m.placeNames, name)
		}
	}
	if cfg.ScriptPattern != "" {
		re, err := regexp.Compile(cfg.ScriptPattern)
		if err != nil {
			return nil, fmt.Errorf("compile regional script pattern: %w", err)
		}
		m.script = re
	}
	return m, nil
}

// InRegion reports whether location names one of the target places.
func (m *RegionalMatcher) InRegion(location string) bool {
	if m == nil {
		return false
	}
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return false
	}
	for _, place := range m.placeNames {
		if strings.Contains(loc, place) {
			return true
		}
	}
	return false
}

// UsesRegionalScript reports whether text contains characters of the
// configured script.
func (m *RegionalMatcher) UsesRegionalScript(text string) bool {
	if m == nil || m.script == nil || text == "" {
		return false
	}
	return m.script.MatchString(text)
}
