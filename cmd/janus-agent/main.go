package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/agent"
	"github.com/hzouari/janus/internal/config"
	"github.com/hzouari/janus/internal/door"
	"github.com/hzouari/janus/internal/hardware"
	"github.com/hzouari/janus/internal/httpapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Env == "dev" {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := buildSink(ctx, cfg, logger)
	defer sink.Close()

	supervisor := door.NewSupervisor(sink, door.Config{
		OpenSeconds: cfg.DoorOpenSeconds,
	}, logger)

	client := httpapi.NewClient(httpapi.ClientConfig{BaseURL: cfg.ServiceURL}, logger)

	resolver := agent.NewStdinResolver(os.Stdin, logger)
	loop := agent.NewLoop(resolver, client, supervisor, agent.LoopConfig{
		StabilityFrames: cfg.StabilityFrames,
		Cooldown:        time.Duration(cfg.CooldownSeconds) * time.Second,
	}, logger)

	logger.WithFields(log.Fields{
		"service": cfg.ServiceURL,
		"serial":  cfg.SerialPort,
	}).Info("door agent starting")

	if err := loop.Run(ctx); err != nil {
		logger.WithError(err).Error("recognition loop failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = supervisor.Shutdown(shutdownCtx)
}

// buildSink selects the hardware channel.  No serial port configured means
// the null sink; a configured port that cannot connect still comes up — the
// serial supervisor keeps retrying in the background and the agent runs
// degraded until the controller appears.
func buildSink(ctx context.Context, cfg config.Config, logger *log.Logger) hardware.Sink {
	if cfg.SerialPort == "" {
		logger.Info("no serial port configured, using null sink")
		return hardware.NewNullSink(logger)
	}

	serial, err := hardware.NewSerialSink(hardware.SerialConfig{
		Port:     cfg.SerialPort,
		BaudRate: cfg.SerialBaud,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("serial sink unavailable, falling back to null sink")
		return hardware.NewNullSink(logger)
	}
	serial.Start(ctx)
	return serial
}
