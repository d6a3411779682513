package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
	"github.com/esiqveland/notifyfwd/internal/config"
	"github.com/esiqveland/notifyfwd/internal/logging"
	"github.com/esiqveland/notifyfwd/internal/platform"
	"github.com/esiqveland/notifyfwd/internal/transport/ws"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to config yaml")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runMain(ctx, cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
		os.Exit(1)
	}
}

func runMain(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log)

	conn, err := ws.Dial(ctx, cfg.ServerURL, log)
	if err != nil {
		return err
	}
	defer conn.Close()
	log = log.With().Str("session", conn.ID()).Logger()

	var factories []notifyfwd.Factory
	if cfg.NativeNotifierEnabled() {
		factories = platform.NativeFactories(log)
	}

	// Without threaded notifications the backend runs on the main goroutine,
	// which is the one the toolkits expect.
	var (
		loop      *notifyfwd.MainLoop
		scheduler = notifyfwd.Immediate()
	)
	if !cfg.Threaded() {
		loop = notifyfwd.NewMainLoop()
		scheduler = notifyfwd.Deferred(loop)
	}

	client := notifyfwd.New(conn,
		notifyfwd.WithLogger(log),
		notifyfwd.WithBackends(factories...),
		notifyfwd.WithScheduler(scheduler),
	)
	client.InitLocal(cfg.NotificationsEnabled())
	defer client.Cleanup()

	peerCaps, err := conn.Hello(ctx, client.Caps())
	if err != nil {
		return err
	}
	client.ParseServerCapabilities(peerCaps)
	if !client.Capabilities().Enabled() {
		log.Info().Msg("notification forwarding is disabled for this session")
	}

	errc := make(chan error, 1)
	go func() {
		errc <- conn.Run(ctx, client.Handlers())
	}()

	if loop == nil {
		return waitRun(ctx, errc, log)
	}
	loopCtx, stopLoop := context.WithCancel(ctx)
	result := make(chan error, 1)
	go func() {
		result <- waitRun(ctx, errc, log)
		stopLoop()
	}()
	loop.Run(loopCtx)
	return <-result
}

func waitRun(ctx context.Context, errc <-chan error, log zerolog.Logger) error {
	select {
	case err := <-errc:
		if err != nil {
			return err
		}
		log.Info().Msg("peer closed the session")
		return nil
	case <-ctx.Done():
		// Run stops reading once ctx is done; wait for it so the backend is
		// released only after the last packet was handled.
		<-errc
		return nil
	}
}
