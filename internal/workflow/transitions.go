// Package workflow drives a single worker's job-seeking lifecycle.
//
// Status graph:
//
//	Idle ──request-job──► Searching ──search-succeeded──► Offered ──accept──► Working
//	 ▲                        │                              │                   │
//	 │◄──────search-failed────┘                              │             shift-elapsed
//	 │◄──────────────────────────decline─────────────────────┘                   ▼
//	 └◄────────────────────────────────────find-another───────────────────── Completed
package workflow

import (
	"fmt"

	"gigfinder/internal/entity"
)

type Trigger string

const (
	TriggerRequestJob      Trigger = "request-job"
	TriggerSearchSucceeded Trigger = "search-succeeded"
	TriggerSearchFailed    Trigger = "search-failed"
	TriggerDecline         Trigger = "decline"
	TriggerAccept          Trigger = "accept"
	TriggerShiftElapsed    Trigger = "shift-elapsed"
	TriggerFindAnother     Trigger = "find-another"
)

// transitions lists every allowed (from, trigger) → to.
var transitions = map[entity.WorkerStatus]map[Trigger]entity.WorkerStatus{
	entity.StatusIdle: {
		TriggerRequestJob: entity.StatusSearching,
	},
	entity.StatusSearching: {
		TriggerSearchSucceeded: entity.StatusOffered,
		TriggerSearchFailed:    entity.StatusIdle,
	},
	entity.StatusOffered: {
		TriggerDecline: entity.StatusIdle,
		TriggerAccept:  entity.StatusWorking,
	},
	entity.StatusWorking: {
		TriggerShiftElapsed: entity.StatusCompleted,
	},
	entity.StatusCompleted: {
		TriggerFindAnother: entity.StatusIdle,
	},
}

// Next returns the status reached by firing trigger in from. ok is false when
// the trigger is not defined for that status.
func Next(from entity.WorkerStatus, trigger Trigger) (to entity.WorkerStatus, ok bool) {
	to, ok = transitions[from][trigger]
	return to, ok
}

func ParseTrigger(s string) (Trigger, error) {
	t := Trigger(s)
	switch t {
	case TriggerRequestJob, TriggerSearchSucceeded, TriggerSearchFailed,
		TriggerDecline, TriggerAccept, TriggerShiftElapsed, TriggerFindAnother:
		return t, nil
	}
	return "", fmt.Errorf("unknown trigger %q", s)
}
