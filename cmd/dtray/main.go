// dtray bridges StatusNotifierItem tray icons into a legacy XEMBED system
// tray.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dtray/dtray/internal/bridge"
	"github.com/dtray/dtray/internal/config"
	"github.com/dtray/dtray/internal/sysd"
	"github.com/dtray/dtray/internal/version"
)

func main() {
	printVersion := flag.Bool("v", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version.String())
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.Version = version.Version

	if err := run(*cfg); err != nil {
		slog.Error("dtray failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	b, err := bridge.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("received signal, shutting down")
		sysd.Stopping()
		cancel()
	}()

	sysd.Ready()
	if interval := sysd.WatchdogInterval(); interval > 0 {
		go watchdog(ctx, interval)
	}

	slog.Info("dtray running", "icon_size", cfg.IconSize)
	runErr := b.Run(ctx)
	b.Cleanup()
	return runErr
}

func watchdog(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sysd.Ping()
		}
	}
}
