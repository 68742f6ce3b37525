package httptransport

import (
	"encoding/json"
	"net/http"

	"gigfinder/internal/entity"
	"gigfinder/internal/events"
	"gigfinder/internal/workflow"
)

type apiError struct {
	Message string `json:"message"`
}

type stateResp struct {
	Status   entity.WorkerStatus `json:"status"`
	Label    string              `json:"label"`
	Job      *entity.Job         `json:"job"`
	Error    string              `json:"error,omitempty"`
	Earnings *float64            `json:"earnings,omitempty"`
}

type actionResp struct {
	stateResp
	Applied bool `json:"applied"`
}

type historyResp struct {
	Count int          `json:"count"`
	Jobs  []entity.Job `json:"jobs"`
}

type stateChange struct {
	From    entity.WorkerStatus `json:"from"`
	To      entity.WorkerStatus `json:"to"`
	Trigger workflow.Trigger    `json:"trigger"`
	State   stateResp           `json:"state"`
}

func toStateResp(s workflow.State) stateResp {
	return stateResp{
		Status:   s.Status,
		Label:    s.Status.Label(),
		Job:      s.Job,
		Error:    s.Error,
		Earnings: s.Earnings,
	}
}

// ChangeEvent encodes a workflow change as a worker.state SSE envelope.
func ChangeEvent(ch workflow.Change) string {
	return events.MakeEvent("", events.TypeWorkerState, 1, stateChange{
		From:    ch.From,
		To:      ch.To,
		Trigger: ch.Trigger,
		State:   toStateResp(ch.State),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Message: msg})
}
