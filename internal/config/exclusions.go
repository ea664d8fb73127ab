package config

import (
	"path/filepath"
	"strings"
)

// ExclusionList matches source applications by path or by application name.
// Comparison is case-insensitive.
type ExclusionList struct {
	entries map[string]bool
}

// NewExclusionList builds an exclusion list from configured entries
func NewExclusionList(apps []string) *ExclusionList {
	entries := make(map[string]bool, len(apps))
	for _, app := range apps {
		app = strings.TrimSpace(app)
		if app == "" {
			continue
		}
		entries[strings.ToLower(app)] = true
	}
	return &ExclusionList{entries: entries}
}

// IsExcluded reports whether appPath, or its base name, is on the list
func (l *ExclusionList) IsExcluded(appPath string) bool {
	if appPath == "" || len(l.entries) == 0 {
		return false
	}
	if l.entries[strings.ToLower(appPath)] {
		return true
	}
	name := filepath.Base(appPath)
	if l.entries[strings.ToLower(name)] {
		return true
	}
	return l.entries[strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))]
}
