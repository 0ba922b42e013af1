package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/inconshreveable/log15"

	"audiopeak/host/config"
	"audiopeak/host/monitor"
	"audiopeak/host/publish"
	"audiopeak/protocol"
)

var (
	version = "undefined" // updated during release build
)

func main() {
	configFile := flag.String("c", "peak-host.yaml", "Config file")
	device := flag.String("d", "", "Serial device (overrides config)")
	recalibrate := flag.Bool("r", false, "Recalibrate the noise floor on start")
	verbose := flag.Bool("v", false, "Print more verbose messages")
	versionFlag := flag.Bool("V", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("peak-host - version %s (protocol %s)\n", version, protocol.Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Crit("Error loading config", "file", *configFile, "error", err)
		os.Exit(1)
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *recalibrate {
		cfg.Monitor.RecalibrateOnStart = true
	}

	logLevel := cfg.LogLevel()
	if *verbose {
		logLevel = log.LvlDebug
	}
	log.Root().SetHandler(log.LvlFilterHandler(logLevel, log.StdoutHandler))

	if err := run(cfg); err != nil {
		log.Error("Bridge stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := log.New("device", cfg.Serial.Device)

	var pub publish.Publisher = publish.NewLog(logger)
	if cfg.MQTTEnabled() {
		mp, err := publish.NewMQTT(cfg, log.New("broker", cfg.BrokerURL()))
		if err != nil {
			return err
		}
		pub = mp
	}
	defer pub.Close()

	mon, err := monitor.Connect(cfg.SerialPort(), logger)
	if err != nil {
		return err
	}
	defer mon.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// the dictionary takes a few dozen round trips
	err = withTimeout(ctx, 10*cfg.Monitor.CommandTimeout, func(ctx context.Context) error {
		_, err := mon.Identify(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if cfg.Monitor.RecalibrateOnStart {
		if err := withTimeout(ctx, cfg.Monitor.CommandTimeout, mon.Recalibrate); err != nil {
			return err
		}
	}

	var poll <-chan time.Time
	if cfg.Monitor.StatusInterval > 0 {
		ticker := time.NewTicker(cfg.Monitor.StatusInterval)
		defer ticker.Stop()
		poll = ticker.C
		if err := withTimeout(ctx, cfg.Monitor.CommandTimeout, mon.RequestStatus); err != nil {
			logger.Warn("Status request failed", "error", err)
		}
	}

	for {
		select {
		case ev := <-mon.Events():
			if err := pub.Publish(ev); err != nil {
				logger.Error("Error while publishing event", "kind", ev.Kind, "error", err)
			}
		case <-poll:
			if err := withTimeout(ctx, cfg.Monitor.CommandTimeout, mon.RequestStatus); err != nil {
				logger.Warn("Status request failed", "error", err)
			}
		case <-mon.Done():
			return mon.Err()
		case <-ctx.Done():
			logger.Info("Shutting down")
			return nil
		}
	}
}

func withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}
