package entity

import "fmt"

type WorkerStatus string

const (
	StatusIdle      WorkerStatus = "Idle"
	StatusSearching WorkerStatus = "Searching"
	StatusOffered   WorkerStatus = "Offered"
	StatusWorking   WorkerStatus = "Working"
	StatusCompleted WorkerStatus = "Completed"
)

var AllStatuses = []WorkerStatus{
	StatusIdle,
	StatusSearching,
	StatusOffered,
	StatusWorking,
	StatusCompleted,
}

func ParseWorkerStatus(s string) (WorkerStatus, error) {
	st := WorkerStatus(s)
	switch st {
	case StatusIdle, StatusSearching, StatusOffered, StatusWorking, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown worker status %q", s)
}

// Label is the text shown next to the status indicator.
func (s WorkerStatus) Label() string {
	if s == StatusOffered {
		return "Job Offered"
	}
	return string(s)
}

// HoldsJob reports whether a current job must be present in this status.
func (s WorkerStatus) HoldsJob() bool {
	return s == StatusOffered || s == StatusWorking || s == StatusCompleted
}
