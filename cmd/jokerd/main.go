package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"jokerd/internal/bot"
	"jokerd/internal/game"
	"jokerd/internal/randutil"
	"jokerd/internal/room"
	"jokerd/internal/server"
	"jokerd/internal/store"
)

var CLI struct {
	Config   string `short:"c" default:"jokerd.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Listen address (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	RedisURL string `help:"Redis URL for the durable mirror (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		host, port, err := net.SplitHostPort(CLI.Addr)
		if err != nil {
			fmt.Printf("Invalid addr %q: %v\n", CLI.Addr, err)
			kctx.Exit(1)
		}
		cfg.Server.Address = host
		cfg.Server.Port, err = strconv.Atoi(port)
		if err != nil {
			fmt.Printf("Invalid port %q: %v\n", port, err)
			kctx.Exit(1)
		}
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.RedisURL != "" {
		cfg.Server.RedisURL = CLI.RedisURL
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	// Setup logging
	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := quartz.NewReal()

	// Durable mirror: Redis when configured and reachable, otherwise a
	// process-local store. The game runs the same either way; only crash
	// recovery degrades.
	var st store.Store
	if cfg.Server.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.Server.RedisURL, logger)
		if err != nil {
			logger.Warn("redis unreachable, falling back to memory store", "url", cfg.Server.RedisURL, "err", err)
			st = store.NewMemoryStore(clock)
		} else {
			st = redisStore
		}
	} else {
		st = store.NewMemoryStore(clock)
	}

	seed := time.Now().UnixNano()
	engine := game.NewEngine(randutil.New(seed))
	bots := bot.New(randutil.New(seed + 1))
	manager := room.NewManager(st, logger, clock)

	wsServer := server.NewServer(cfg.ListenAddress(), logger)
	orch := server.NewOrchestrator(cfg, engine, bots, manager, st, wsServer, clock, logger)
	wsServer.SetOrchestrator(orch)

	logger.Info("Starting Joker server", "addr", cfg.ListenAddress())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(wsServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return wsServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}
