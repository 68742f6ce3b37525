package httptransport_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gigfinder/internal/entity"
	"gigfinder/internal/events"
	"gigfinder/internal/metrics"
	"gigfinder/internal/service"
	httptransport "gigfinder/internal/transport/http"
	"gigfinder/internal/worker"
	"gigfinder/internal/workflow"
)

// ---- fakes ----

type genStub struct {
	job entity.Job
	err error
}

func (g *genStub) GenerateJob(ctx context.Context) (entity.Job, error) {
	return g.job, g.err
}

func (g *genStub) GenerateDemand(ctx context.Context) ([]entity.DemandPoint, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []entity.DemandPoint{{Location: "Darwin", Demand: 9}}, nil
}

type memRepo struct {
	mu   sync.Mutex
	data []byte
}

func (r *memRepo) Load(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data, nil
}

func (r *memRepo) Save(ctx context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append([]byte(nil), data...)
	return nil
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) worker.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) fireLast() {
	s.mu.Lock()
	t := s.timers[len(s.timers)-1]
	s.mu.Unlock()
	if !t.stopped {
		t.f()
	}
}

// ---- helpers ----

type testEnv struct {
	router http.Handler
	gen    *genStub
	sched  *manualScheduler
	hub    *events.Hub
}

func cattleJob() entity.Job {
	return entity.Job{
		ID:          "1700000000000-Cattle-Station-Hand",
		Title:       "Cattle Station Hand",
		Company:     "Barkly Downs",
		Location:    "Tennant Creek, NT",
		Description: "Muster cattle.",
		PayRate:     30,
		PayType:     entity.PayHourly,
	}
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gen := &genStub{job: cattleJob()}
	sched := &manualScheduler{}
	hub := events.NewHub()
	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)

	history := service.NewHistoryService(&memRepo{})
	history.OnChange(m.HistoryChanged)
	demand := service.NewDemandService(gen)

	ctrl := workflow.NewController(gen, history,
		workflow.WithScheduler(sched),
		workflow.WithObserver(m.ObserveChange),
		workflow.WithObserver(func(ch workflow.Change) { hub.Publish(httptransport.ChangeEvent(ch)) }),
	)
	t.Cleanup(ctrl.Close)

	h := httptransport.NewHandler(ctrl, history, demand, hub)
	return &testEnv{router: httptransport.Routes(h, reg), gen: gen, sched: sched, hub: hub}
}

type stateBody struct {
	Status   string      `json:"status"`
	Label    string      `json:"label"`
	Job      *entity.Job `json:"job"`
	Error    string      `json:"error"`
	Earnings *float64    `json:"earnings"`
	Applied  *bool       `json:"applied"`
}

func do(t *testing.T, h http.Handler, method, path string) (int, stateBody, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var body stateBody
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr.Code, body, rr.Body.String()
}

// ---- tests ----

func TestHTTP_Health(t *testing.T) {
	env := newEnv(t)
	code, _, raw := do(t, env.router, http.MethodGet, "/health")
	if code != http.StatusOK || raw != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", code, raw)
	}
}

func TestHTTP_FullShift(t *testing.T) {
	env := newEnv(t)

	code, st, raw := do(t, env.router, http.MethodGet, "/worker")
	if code != http.StatusOK || st.Status != "Idle" || st.Job != nil {
		t.Fatalf("unexpected initial state %d %s", code, raw)
	}

	_, st, raw = do(t, env.router, http.MethodPost, "/worker/search")
	if st.Status != "Offered" || st.Label != "Job Offered" || st.Job == nil || st.Applied == nil || !*st.Applied {
		t.Fatalf("unexpected search response %s", raw)
	}

	_, st, raw = do(t, env.router, http.MethodPost, "/worker/accept")
	if st.Status != "Working" || !*st.Applied {
		t.Fatalf("unexpected accept response %s", raw)
	}

	env.sched.fireLast()

	_, st, raw = do(t, env.router, http.MethodGet, "/worker")
	if st.Status != "Completed" || st.Earnings == nil || *st.Earnings != 90 {
		t.Fatalf("expected completed with earnings 90, got %s", raw)
	}

	_, st, raw = do(t, env.router, http.MethodPost, "/worker/next")
	if st.Status != "Idle" || st.Job != nil {
		t.Fatalf("unexpected next response %s", raw)
	}

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	var hist struct {
		Count int          `json:"count"`
		Jobs  []entity.Job `json:"jobs"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &hist); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if hist.Count != 1 || hist.Jobs[0].ID != cattleJob().ID {
		t.Fatalf("unexpected history %s", rr.Body.String())
	}
}

func TestHTTP_InvalidTriggerIsNotApplied(t *testing.T) {
	env := newEnv(t)

	code, st, raw := do(t, env.router, http.MethodPost, "/worker/accept")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if st.Applied == nil || *st.Applied || st.Status != "Idle" {
		t.Fatalf("expected applied=false in Idle, got %s", raw)
	}
}

func TestHTTP_SearchFailureReturnsMessage(t *testing.T) {
	env := newEnv(t)
	env.gen.err = errors.New("ai busy")

	_, st, raw := do(t, env.router, http.MethodPost, "/worker/search")
	if st.Status != "Idle" || st.Job != nil || st.Error != workflow.FailedSearchMessage {
		t.Fatalf("unexpected failure response %s", raw)
	}
}

func TestHTTP_Decline(t *testing.T) {
	env := newEnv(t)
	do(t, env.router, http.MethodPost, "/worker/search")

	_, st, raw := do(t, env.router, http.MethodPost, "/worker/decline")
	if st.Status != "Idle" || st.Job != nil || !*st.Applied {
		t.Fatalf("unexpected decline response %s", raw)
	}
}

func TestHTTP_DemandRefreshAndRead(t *testing.T) {
	env := newEnv(t)

	code, _, raw := do(t, env.router, http.MethodPost, "/demand/refresh")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", code, raw)
	}

	req := httptest.NewRequest(http.MethodGet, "/demand", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var snap service.DemandSnapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !snap.Loaded || len(snap.Entries) != len(entity.DemandLocations) {
		t.Fatalf("unexpected snapshot %s", rr.Body.String())
	}
	if snap.Entries[0].Location != "Darwin" || !snap.Entries[0].Hot {
		t.Fatalf("expected hot Darwin first, got %+v", snap.Entries[0])
	}
}

func TestHTTP_DemandRefreshFailure(t *testing.T) {
	env := newEnv(t)
	env.gen.err = errors.New("ai busy")

	code, _, raw := do(t, env.router, http.MethodPost, "/demand/refresh")
	if code != http.StatusBadGateway || !strings.Contains(raw, service.DemandErrorMessage) {
		t.Fatalf("expected 502 with message, got %d %s", code, raw)
	}
}

func TestHTTP_MetricsExposed(t *testing.T) {
	env := newEnv(t)
	do(t, env.router, http.MethodPost, "/worker/search")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `gigfinder_job_searches_total{outcome="offered"} 1`) {
		t.Fatalf("expected search counter, got %s", rr.Body.String())
	}
}

func TestHTTP_EventsStreamTransitions(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	lines := make(chan events.Event, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			data, ok := strings.CutPrefix(sc.Text(), "data: ")
			if !ok {
				continue
			}
			var e events.Event
			if json.Unmarshal([]byte(data), &e) == nil {
				lines <- e
			}
		}
		close(lines)
	}()

	next := func() events.Event {
		select {
		case e, ok := <-lines:
			if !ok {
				t.Fatal("stream closed")
			}
			return e
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
		}
		return events.Event{}
	}

	if e := next(); e.Type != events.TypePing {
		t.Fatalf("expected ping first, got %+v", e)
	}
	if e := next(); e.Type != events.TypeWorkerState {
		t.Fatalf("expected initial state, got %+v", e)
	}

	for env.hub.Subscribers() == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	do(t, env.router, http.MethodPost, "/worker/search")

	var got []string
	for len(got) < 2 {
		e := next()
		var ch struct {
			To string `json:"to"`
		}
		_ = json.Unmarshal(e.Data, &ch)
		got = append(got, ch.To)
	}
	if got[0] != "Searching" || got[1] != "Offered" {
		t.Fatalf("expected Searching then Offered, got %v", got)
	}
}
