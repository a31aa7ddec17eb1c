// Command dispatcher runs the chat dispatch engine: the public chat API
// (create/poll/health), the admin/metrics API, and the background
// dispatcher/monitor loops that assign queued sessions to agents.
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/assign"
	"github.com/shiftdesk/chatdispatch/internal/bizhours"
	"github.com/shiftdesk/chatdispatch/internal/capacity"
	"github.com/shiftdesk/chatdispatch/internal/clock"
	"github.com/shiftdesk/chatdispatch/internal/config"
	"github.com/shiftdesk/chatdispatch/internal/dispatch"
	"github.com/shiftdesk/chatdispatch/internal/dispatchcore"
	"github.com/shiftdesk/chatdispatch/internal/httpserver"
	"github.com/shiftdesk/chatdispatch/internal/logging"
	"github.com/shiftdesk/chatdispatch/internal/metrics"
	"github.com/shiftdesk/chatdispatch/internal/ratelimit"
	"github.com/shiftdesk/chatdispatch/internal/roundrobin"
	"github.com/shiftdesk/chatdispatch/internal/selector"
	"github.com/shiftdesk/chatdispatch/internal/session"
	"github.com/shiftdesk/chatdispatch/internal/timeout"
)

var (
	buildVersion = "v0.1.0"
	buildCommit  = "unknown"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	levelTag := strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	if levelTag == "" {
		levelTag = "INFO"
	}

	const maxLogBytes = int64(300 * 1024 * 1024)
	if logTarget := strings.TrimSpace(cfg.LogFile); logTarget != "" {
		rot, err := logging.NewRotatingWriter(logTarget, maxLogBytes)
		if err != nil {
			log.Fatalf("init rotating log: %v", err)
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rot))
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
		log.SetPrefix("[dispatcher][" + levelTag + "] ")
		defer rot.Close()
	}

	log.Printf("chatdispatch version=%s commit=%s environment=%s", buildVersion, buildCommit, cfg.Environment)

	rosterOverrides := make(map[string]agent.ShiftOverride, len(cfg.RosterOverrides))
	for team, o := range cfg.RosterOverrides {
		rosterOverrides[team] = agent.ShiftOverride{Start: o.Start, End: o.End}
	}
	agentStore := agent.NewStore(agent.DefaultRoster(rosterOverrides))
	sessionStore := session.NewStore()

	realClock := clock.RealClock{}
	shiftManager := agent.NewShiftManager(agentStore, realClock, cfg.ShiftHandoff)
	shiftManager.Refresh()

	hoursChecker := bizhours.New(realClock)
	capCalc := capacity.New(agentStore, sessionStore, hoursChecker, cfg.QueueMultiplier)
	rr := roundrobin.New()
	sel := selector.New(agentStore, rr)
	assigner := assign.New(sessionStore, capCalc, realClock)

	reg := metrics.NewRegistry()
	timeoutSvc := timeout.New(sessionStore, agentStore, realClock, reg, cfg.ExpectedPollInterval)

	dispatcher := dispatch.New(agentStore, sessionStore, sel, assigner, hoursChecker, rr, reg, cfg.DispatcherInterval)
	monitor := dispatch.NewMonitor(timeoutSvc, cfg.MonitorInterval)

	facade := dispatchcore.New(sessionStore, agentStore, capCalc, realClock)

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		CreatePerSecond: cfg.RateLimitCreatePerUser,
		CreateBurst:     cfg.RateLimitCreateBurst,
		PollPerSecond:   cfg.RateLimitPollPerUser,
		PollBurst:       cfg.RateLimitPollBurst,
	})
	defer limiter.Close()

	srv := httpserver.New(facade, sessionStore, agentStore, reg, limiter)

	chatHTTP := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           srv.ChatRouter(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	adminHTTP := &http.Server{
		Addr:              cfg.AdminListenAddress,
		Handler:           srv.AdminRouter(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// shiftTicker keeps every agent's active/acceptingNewChats flags current
	// independently of the dispatcher's own tick cadence.
	shiftTicker := time.NewTicker(time.Minute)
	defer shiftTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-shiftTicker.C:
				shiftManager.Refresh()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { return monitor.Run(gctx) })
	g.Go(func() error {
		log.Printf("chat server listening on %s", chatHTTP.Addr)
		if err := chatHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("admin server listening on %s", adminHTTP.Addr)
		if err := adminHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	<-gctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := chatHTTP.Shutdown(shutdownCtx); err != nil {
		log.Printf("chat server graceful shutdown failed: %v", err)
	}
	if err := adminHTTP.Shutdown(shutdownCtx); err != nil {
		log.Printf("admin server graceful shutdown failed: %v", err)
	}

	if err := g.Wait(); err != nil {
		log.Printf("dispatcher exited with error: %v", err)
	}
}
