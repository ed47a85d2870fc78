package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"structurebuilder.ai/internal/builder"
	"structurebuilder.ai/internal/config"
	"structurebuilder.ai/internal/material"
	"structurebuilder.ai/internal/mcp"
	persistlog "structurebuilder.ai/internal/persistence/log"
	"structurebuilder.ai/internal/structure"
	"structurebuilder.ai/internal/transport/observer"
	"structurebuilder.ai/internal/world"
)

func main() {
	var (
		configPath     = flag.String("config", "./configs/server.yaml", "server config path (defaults are used when missing)")
		dataDir        = flag.String("data", "", "runtime data directory (overrides storage.data_dir)")
		disableDB      = flag.Bool("disable_db", false, "disable the build index")
		mcpListen      = flag.String("mcp_listen", "", "MCP http listen address (overrides mcp.listen)")
		mcpHMACSecret  = flag.String("mcp_hmac_secret", "", "MCP hmac secret (or set SB_MCP_HMAC_SECRET)")
		observerListen = flag.String("observer_listen", "", "observer http listen address (overrides observer.listen; \"off\" disables)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	applyOverrides(&cfg, *dataDir, *disableDB, *mcpListen, *mcpHMACSecret, *observerListen)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}
	_ = os.MkdirAll(cfg.Storage.DataDir, 0o755)

	ctx, cancel := signalContext()
	defer cancel()

	presets, err := loadMaterials(ctx, cfg)
	if err != nil {
		logger.Fatalf("load materials: %v", err)
	}
	registry := structure.Builtin().Without(cfg.Builds.DisabledStructures...)
	logger.Printf("structures=%s materials=%s", strings.Join(registry.Names(), ","), strings.Join(presets.Names(), ","))

	r2Mirror, err := buildR2MirrorRuntime(cfg.Storage.DataDir, logger)
	if err != nil {
		logger.Fatalf("init r2 mirror: %v", err)
	}
	defer r2Mirror.Close()

	buildLog := persistlog.NewBuildLogger(cfg.Storage.DataDir, logger)
	buildLog.OnFileClosed(r2Mirror.Enqueue)
	defer buildLog.Close()

	idx, history, err := openRuntimeIndex(cfg, logger)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	hub := observer.NewHub(cfg.Observer.SendBuffer, logger)

	w := world.New(world.Config{
		ID:        cfg.World.ID,
		BoundaryR: cfg.World.BoundaryR,
		MinY:      cfg.World.MinY,
		MaxY:      cfg.World.MaxY,
		QueueSize: cfg.World.QueueSize,
		Logger:    logger,
	})
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("world stopped: %v", err)
		}
	}()

	recorders := []builder.Recorder{buildLog, hub}
	if idx != nil {
		recorders = append(recorders, idx)
	}
	svc, err := builder.New(builder.Config{
		World:              w,
		Registry:           registry,
		Presets:            presets,
		Recorders:          recorders,
		Logger:             logger,
		MaxBlocks:          cfg.Builds.MaxBlocks,
		FlatWorldMaxBlocks: cfg.Builds.FlatWorldMaxBlocks,
		ExecTimeout:        cfg.ExecTimeout(),
	})
	if err != nil {
		logger.Fatalf("builder: %v", err)
	}

	mcpSrv, err := mcp.NewServer(mcp.Config{
		Builder:         svc,
		History:         history,
		HMACSecret:      cfg.MCP.HMACSecret,
		AllowLegacyHMAC: mcp.AllowLegacyHMACFromEnv(),
		LoopbackOnly:    !cfg.MCP.AllowNonLoopback,
		MaxBodyBytes:    cfg.MCP.MaxBodyBytes,
		ReplayWindow:    cfg.ReplayWindow(),
		ReplayCacheSize: cfg.MCP.ReplayCacheSize,
		Logger:          log.New(os.Stdout, "[mcp] ", log.LstdFlags|log.Lmicroseconds),
	})
	if err != nil {
		logger.Fatalf("mcp: %v", err)
	}
	if cfg.MCP.HMACSecret == "" && cfg.MCP.AllowNonLoopback {
		logger.Printf("WARNING: mcp is reachable from non-loopback clients without hmac auth")
	}

	mux := http.NewServeMux()
	mux.Handle("/", mcpSrv.Handler())
	mux.HandleFunc("/metrics", metricsHandler(metricsSources{
		World:    w,
		Index:    idx,
		BuildLog: buildLog,
		Hub:      hub,
		MCP:      mcpSrv,
		Mirror:   r2Mirror,
	}))
	if envBool("SB_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (SB_ENABLE_PPROF_HTTP=false)")
	}

	servers := []*http.Server{{
		Addr:              cfg.MCP.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if cfg.Observer.Listen != "" {
		obs := observer.NewServer(observer.Config{
			WorldID:          cfg.World.ID,
			Hub:              hub,
			Catalog:          svc,
			AllowNonLoopback: cfg.Observer.AllowNonLoopback,
			Logger:           logger,
		})
		servers = append(servers, &http.Server{
			Addr:              cfg.Observer.Listen,
			Handler:           obs.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		})
	} else {
		logger.Printf("observer disabled")
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			logger.Printf("listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Printf("shutting down")
	case err := <-errCh:
		logger.Printf("ListenAndServe: %v", err)
		cancel()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}
	w.Stop()
	<-w.Done()
}

// loadConfig reads path, falling back to defaults when the file is absent.
func loadConfig(path string, logger *log.Logger) (config.Config, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Printf("config not found (%s); using defaults", path)
			path = ""
		}
	}
	return config.Load(path)
}

func applyOverrides(cfg *config.Config, dataDir string, disableDB bool, mcpListen, mcpSecret, observerListen string) {
	if v := strings.TrimSpace(dataDir); v != "" {
		cfg.Storage.DataDir = v
	}
	if disableDB || envBool("SB_DISABLE_DB", false) {
		cfg.Storage.DisableDB = true
	}
	if v := strings.TrimSpace(mcpListen); v != "" {
		cfg.MCP.Listen = v
	}
	secret := strings.TrimSpace(mcpSecret)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("SB_MCP_HMAC_SECRET"))
	}
	if secret != "" {
		cfg.MCP.HMACSecret = secret
	}
	switch v := strings.TrimSpace(observerListen); v {
	case "":
	case "off", "none":
		cfg.Observer.Listen = ""
	default:
		cfg.Observer.Listen = v
	}
}

func loadMaterials(ctx context.Context, cfg config.Config) (material.Presets, error) {
	if cfg.Materials.Source != "" {
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return material.FetchAndLoad(fetchCtx, cfg.Materials.Source, filepath.Join(cfg.Storage.DataDir, "materials"))
	}
	return material.LoadFile(cfg.Materials.File)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
