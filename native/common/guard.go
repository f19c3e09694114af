package common

import (
	"errors"
	"strings"
)

var ErrModulePaused = errors.New("module paused")

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// StaticPauses is a PauseView backed by a fixed module set, typically loaded
// from node configuration.
type StaticPauses map[string]bool

// NewStaticPauses builds a pause set from module names. Blank names are ignored.
func NewStaticPauses(modules ...string) StaticPauses {
	set := make(StaticPauses, len(modules))
	for _, module := range modules {
		trimmed := strings.ToLower(strings.TrimSpace(module))
		if trimmed != "" {
			set[trimmed] = true
		}
	}
	return set
}

// IsPaused implements PauseView.
func (s StaticPauses) IsPaused(module string) bool {
	return s[strings.ToLower(strings.TrimSpace(module))]
}
