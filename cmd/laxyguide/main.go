package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"laxyguide/internal/api"
	"laxyguide/pkg/cache"
	"laxyguide/pkg/config"
	"laxyguide/pkg/db"
	"laxyguide/pkg/guide"
	"laxyguide/pkg/logging"
	"laxyguide/pkg/player"
	"laxyguide/pkg/player/beepdev"
	"laxyguide/pkg/probe"
	"laxyguide/pkg/request"
	"laxyguide/pkg/session"
	"laxyguide/pkg/subsync"
	"laxyguide/pkg/tracker"
	"laxyguide/pkg/version"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/laxyguide.yaml", "Path to config file")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	// Deployment overrides (store URL, listen address) may live in a .env
	// next to the binary; absence is fine.
	_ = godotenv.Load()

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("LaxyGuide Started", "version", version.Version)

	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()

	if err := dbConn.PruneCache(time.Duration(cfg.Store.CacheTTL)); err != nil {
		slog.Warn("Cache pruning failed", "error", err)
	}

	tr := tracker.New()
	reqClient := request.New(cache.NewSQLiteCache(dbConn), tr,
		request.WithTimeout(time.Duration(cfg.Request.Timeout)),
		request.WithRetries(cfg.Request.Retries, time.Duration(cfg.Request.Backoff.BaseDelay)),
	)

	resolver := guide.NewResolver(reqClient, &cfg.Store)
	stream := api.NewStateStream()

	// The engine, controller, and session reference each other through
	// handler closures; the session pointer is bound after construction.
	var sessionMgr *session.Manager
	var controller *subsync.Controller

	device := beepdev.New(reqClient)
	engine := player.NewEngine(device, cfg.Player.SkipSeconds, player.Handlers{
		OnTimeUpdate: func(seconds float64) {
			if controller != nil {
				controller.OnTimeUpdate(seconds)
			}
		},
		OnCompleted: func() {
			if sessionMgr != nil {
				sessionMgr.OnTrackCompleted()
			}
		},
		OnStateChange: func(s player.State) {
			stream.Broadcast("player", s)
		},
	})
	defer engine.Close()

	controller = subsync.NewController(engine, time.Duration(cfg.Player.ScrollOverrideWindow), subsync.Handlers{
		OnActiveCaption: func(index int, text string) {
			stream.Broadcast("sync", map[string]any{"active_caption_index": index, "active_caption_text": text})
		},
		OnActiveImage: func(url string) {
			stream.Broadcast("sync", map[string]any{"active_image_url": url})
		},
		OnAutoScroll: func(index int) {
			stream.Broadcast("sync", map[string]any{"auto_scroll_to": index})
		},
	})

	sessionMgr = session.NewManager(resolver, reqClient, engine, controller)
	sessionMgr.SetOnChange(func(s session.Snapshot) {
		stream.Broadcast("guide", s)
	})

	// Store reachability is non-critical: cached tours remain playable.
	results := probe.Run(ctx, []probe.Probe{
		{
			Name:  "Tour Store",
			Check: storeProbe(cfg.Store.BaseURL("probe")),
		},
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	return runServer(ctx, cfg, sessionMgr, engine, controller, tr, stream)
}

// storeProbe checks that the tour store host answers HTTP at all; any
// response code counts, only transport failures do not.
func storeProbe(url string) probe.CheckFunc {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}
}

func runServer(ctx context.Context, cfg *config.Config, sessionMgr *session.Manager, engine *player.Engine, controller *subsync.Controller, tr *tracker.Tracker, stream *api.StateStream) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewGuideHandler(sessionMgr),
		api.NewTransportHandler(engine),
		api.NewSyncHandler(controller),
		api.NewConfigHandler(cfg),
		api.NewStatsHandler(tr, stream),
		stream,
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
