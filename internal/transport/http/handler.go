package httptransport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"gigfinder/internal/events"
	"gigfinder/internal/service"
	"gigfinder/internal/workflow"
)

type Handler struct {
	ctrl    *workflow.Controller
	history *service.HistoryService
	demand  *service.DemandService
	hub     *events.Hub
}

func NewHandler(ctrl *workflow.Controller, history *service.HistoryService, demand *service.DemandService, hub *events.Hub) *Handler {
	return &Handler{ctrl: ctrl, history: history, demand: demand, hub: hub}
}

// GetWorker godoc
// @Summary Current worker state
// @Tags worker
// @Produce json
// @Success 200 {object} stateResp
// @Router /worker [get]
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStateResp(h.ctrl.State()))
}

// Search godoc
// @Summary Request a job
// @Description Idle -> Searching, then Offered or back to Idle with an error. Blocks until the generator answers.
// @Tags worker
// @Produce json
// @Success 200 {object} actionResp
// @Router /worker/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ctrl.RequestJob(r.Context())
	writeJSON(w, http.StatusOK, actionResp{stateResp: toStateResp(s), Applied: ok})
}

// Accept godoc
// @Summary Accept the offered job
// @Description Offered -> Working. The job is recorded in history and the shift timer starts.
// @Tags worker
// @Produce json
// @Success 200 {object} actionResp
// @Router /worker/accept [post]
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ctrl.AcceptCurrentJob(r.Context())
	writeJSON(w, http.StatusOK, actionResp{stateResp: toStateResp(s), Applied: ok})
}

// Decline godoc
// @Summary Decline the offered job
// @Tags worker
// @Produce json
// @Success 200 {object} actionResp
// @Router /worker/decline [post]
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ctrl.DeclineCurrentJob()
	writeJSON(w, http.StatusOK, actionResp{stateResp: toStateResp(s), Applied: ok})
}

// Next godoc
// @Summary Find another job
// @Description Completed -> Idle.
// @Tags worker
// @Produce json
// @Success 200 {object} actionResp
// @Router /worker/next [post]
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ctrl.StartNewSearch()
	writeJSON(w, http.StatusOK, actionResp{stateResp: toStateResp(s), Applied: ok})
}

// GetHistory godoc
// @Summary Accepted jobs, newest first
// @Tags history
// @Produce json
// @Success 200 {object} historyResp
// @Router /history [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	jobs := h.history.All()
	writeJSON(w, http.StatusOK, historyResp{Count: len(jobs), Jobs: jobs})
}

// GetDemand godoc
// @Summary Job demand heat map
// @Tags demand
// @Produce json
// @Success 200 {object} service.DemandSnapshot
// @Router /demand [get]
func (h *Handler) GetDemand(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.demand.Current())
}

// RefreshDemand godoc
// @Summary Refresh the demand map now
// @Tags demand
// @Produce json
// @Success 200 {object} service.DemandSnapshot
// @Failure 502 {object} service.DemandSnapshot
// @Router /demand/refresh [post]
func (h *Handler) RefreshDemand(w http.ResponseWriter, r *http.Request) {
	code := http.StatusOK
	if err := h.demand.Refresh(context.WithoutCancel(r.Context())); err != nil {
		code = http.StatusBadGateway
	}
	writeJSON(w, code, h.demand.Current())
}

// Events godoc
// @Summary Worker state stream
// @Description Server-sent events; each data line is an envelope {id,type,v,at,request_id,data}.
// @Tags events
// @Produce text/event-stream
// @Success 200 {string} string
// @Router /events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(ch)

	reqID := middleware.GetReqID(r.Context())
	cur := h.ctrl.State()
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", events.MakeEvent(reqID, events.TypePing, 1, nil))
	fmt.Fprintf(w, "event: message\ndata: %s\n\n",
		events.MakeEvent(reqID, events.TypeWorkerState, 1, stateChange{To: cur.Status, State: toStateResp(cur)}))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
