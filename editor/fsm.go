// Package editor hosts the bridge session between the host page and the
// embedded diagram editor frame.
package editor

import "github.com/drawit-cms/drawit-go/models"

// State names the explicit phases of one editing session.
type State int

const (
	StateUninitialized State = iota
	StateAwaitingConfigure
	StateAwaitingInit
	StateActive
	StateStuckSuspected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingConfigure:
		return "awaiting-configure"
	case StateAwaitingInit:
		return "awaiting-init"
	case StateActive:
		return "active"
	case StateStuckSuspected:
		return "stuck-suspected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Host commands carried on the same socket as frame events. These drive the
// manual recovery controls and the draft prompts.
const (
	HostReset         = "reset"
	HostRecovery      = "recovery"
	HostClear         = "clear"
	HostDraftDecision = "draft_decision"
)

// legalStates is the transition table: for each inbound frame event, the
// states it may legally arrive in. Events outside their window are logged
// and dropped without touching draft state, except autosave, which is
// honored in any open state so a slow frame can never lose work.
var legalStates = map[string][]State{
	models.EventConfigure: {StateUninitialized, StateAwaitingConfigure},
	models.EventInit:      {StateAwaitingInit, StateAwaitingConfigure},
	models.EventLoad:      {StateActive, StateAwaitingInit},
	models.EventAutosave:  {StateUninitialized, StateAwaitingConfigure, StateAwaitingInit, StateActive, StateStuckSuspected},
	models.EventSave:      {StateActive, StateStuckSuspected},
	models.EventExport:    {StateActive, StateStuckSuspected},
	models.EventExit:      {StateUninitialized, StateAwaitingConfigure, StateAwaitingInit, StateActive, StateStuckSuspected},
	models.EventError:     {StateUninitialized, StateAwaitingConfigure, StateAwaitingInit, StateActive, StateStuckSuspected},
	models.EventPong:      {StateUninitialized, StateAwaitingConfigure, StateAwaitingInit, StateActive, StateStuckSuspected},
}

func legalIn(event string, state State) bool {
	states, known := legalStates[event]
	if !known {
		return false
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
