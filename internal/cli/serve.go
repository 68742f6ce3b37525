package cli

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gigfinder/internal/config"
	"gigfinder/internal/events"
	"gigfinder/internal/metrics"
	"gigfinder/internal/scheduler"
	"gigfinder/internal/service"
	httptransport "gigfinder/internal/transport/http"
	"gigfinder/internal/workflow"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the demand scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	repo, closeRepo, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector(reg)
	hub := events.NewHub()

	history := service.NewHistoryService(repo)
	history.OnChange(m.HistoryChanged)
	m.SetHistorySize(len(history.Load(ctx)))

	gen, kind, err := newGenerator(cfg, keyStore)
	if err != nil {
		return err
	}

	demand := service.NewDemandService(gen)
	demand.OnRefresh(func(err error) {
		m.DemandRefreshed(err)
		hub.Publish(events.MakeEvent("", events.TypeDemand, 1, demand.Current()))
	})

	ctrl := workflow.NewController(gen, history,
		workflow.WithShiftDuration(cfg.Worker.ShiftDuration),
		workflow.WithSearchTimeout(cfg.Worker.SearchTimeout),
		workflow.WithPersistTimeout(cfg.Worker.PersistTimeout),
		workflow.WithObserver(m.ObserveChange),
		workflow.WithObserver(func(ch workflow.Change) {
			hub.Publish(httptransport.ChangeEvent(ch))
		}),
	)
	defer ctrl.Close()

	sched := scheduler.New(demand, cfg.Demand.Refresh)
	h := httptransport.NewHandler(ctrl, history, demand, hub)

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.Routes(h, reg),
		ReadHeaderTimeout: 5 * time.Second,
		// request contexts end on shutdown so event streams close
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	log.Printf("[serve] config addr=%s backend=%s generator=%s shift=%s search_timeout=%s demand_refresh=%q",
		cfg.HTTP.Addr, cfg.History.Backend, kind, cfg.Worker.ShiftDuration, cfg.Worker.SearchTimeout, cfg.Demand.Refresh,
	)

	g.Go(func() error {
		log.Printf("[serve] listening addr=%s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Println("[serve] stopped")
	return err
}
