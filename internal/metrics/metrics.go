// Package metrics exposes Prometheus counters for the worker workflow,
// the history store and the demand refresher.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gigfinder/internal/entity"
	"gigfinder/internal/workflow"
)

const namespace = "gigfinder"

// Collector records metrics on the registerer it was built with.
type Collector struct {
	transitions     *prometheus.CounterVec
	searches        *prometheus.CounterVec
	persistFailures prometheus.Counter
	historySize     prometheus.Gauge
	demandRefreshes *prometheus.CounterVec
	workerStatus    *prometheus.GaugeVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Applied worker workflow transitions",
		}, []string{"from", "to"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_searches_total",
			Help:      "Finished job searches by outcome",
		}, []string{"outcome"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_persist_failures_total",
			Help:      "History writes that failed and were kept in memory only",
		}),
		historySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_jobs",
			Help:      "Number of accepted jobs in history",
		}),
		demandRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demand_refreshes_total",
			Help:      "Demand map refreshes by outcome",
		}, []string{"outcome"}),
		workerStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_status",
			Help:      "1 for the current worker status, 0 otherwise",
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.transitions,
		c.searches,
		c.persistFailures,
		c.historySize,
		c.demandRefreshes,
		c.workerStatus,
	)
	c.setStatus(entity.StatusIdle)
	return c
}

// ObserveChange is a workflow.Observer.
func (c *Collector) ObserveChange(ch workflow.Change) {
	c.transitions.WithLabelValues(string(ch.From), string(ch.To)).Inc()
	switch ch.Trigger {
	case workflow.TriggerSearchSucceeded:
		c.searches.WithLabelValues("offered").Inc()
	case workflow.TriggerSearchFailed:
		c.searches.WithLabelValues("failed").Inc()
	}
	c.setStatus(ch.To)
}

// HistoryChanged matches service.HistoryService.OnChange.
func (c *Collector) HistoryChanged(size int, persistErr error) {
	c.historySize.Set(float64(size))
	if persistErr != nil {
		c.persistFailures.Inc()
	}
}

func (c *Collector) SetHistorySize(size int) {
	c.historySize.Set(float64(size))
}

// DemandRefreshed matches service.DemandService.OnRefresh.
func (c *Collector) DemandRefreshed(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.demandRefreshes.WithLabelValues(outcome).Inc()
}

func (c *Collector) setStatus(current entity.WorkerStatus) {
	for _, s := range entity.AllStatuses {
		v := 0.0
		if s == current {
			v = 1
		}
		c.workerStatus.WithLabelValues(string(s)).Set(v)
	}
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
