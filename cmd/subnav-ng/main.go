package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subnav-ng/internal/config"
	"subnav-ng/internal/udp"
	"subnav-ng/internal/web"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logs := web.NewLogBuffer(2000)
	log.SetOutput(io.MultiWriter(os.Stderr, logs))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	status := web.NewStatus()

	rt, err := newRuntime(cfg, status)
	if err != nil {
		log.Fatalf("runtime init failed: %v", err)
	}
	defer rt.close()

	log.Printf("subnav-ng starting")
	log.Printf("loop interval=%s rangefinder=%s baro=%s web=%s",
		cfg.Loop.Interval, cfg.Rangefinder.Driver, cfg.Baro.Driver, cfg.Web.Listen)

	go func() {
		err := web.Serve(ctx, cfg.Web.Listen, status, logs)
		if err != nil && ctx.Err() == nil {
			log.Printf("web server stopped: %v", err)
			cancel()
		}
	}()

	if cfg.Telemetry.Dest != "" {
		broadcaster, err := udp.NewBroadcaster(cfg.Telemetry.Dest, cfg.Telemetry.Interval)
		if err != nil {
			log.Fatalf("udp telemetry init failed: %v", err)
		}
		defer broadcaster.Close()

		go func() {
			err := broadcaster.Run(ctx, func(seq uint64) []byte {
				snap := status.Snapshot(time.Now().UTC())
				b, err := json.Marshal(snap)
				if err != nil {
					return nil
				}
				return append(b, '\n')
			})
			if err != nil && ctx.Err() == nil {
				log.Printf("udp telemetry stopped: %v", err)
				cancel()
			}
		}()
	}

	ticker := time.NewTicker(cfg.Loop.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("subnav-ng stopping")
			return
		case now := <-ticker.C:
			rt.tick(now.UTC())
		}
	}
}
