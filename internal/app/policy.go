package app

import (
	"fmt"

	"github.com/dkeye/Duel/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(sid core.SessionID, ev core.Event) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(core.SessionID, core.Event) BackpressureAction {
	return p.Action
}

// ParsePolicy maps the signal.slow_policy config value.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "kick":
		return SimplePolicy{Action: KickMember}, nil
	case "drop":
		return SimplePolicy{Action: DropFrame}, nil
	default:
		return nil, fmt.Errorf("unknown slow policy %q", name)
	}
}
