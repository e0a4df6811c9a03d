package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reelgrab/internal/server"
	"reelgrab/pkg/config"
	"reelgrab/pkg/download"
	"reelgrab/pkg/extractor"
	"reelgrab/pkg/identity"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/ratelimit"
	"reelgrab/pkg/storage"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	port       = flag.Int("port", 0, "HTTP listen port (overrides config)")
	outputDir  = flag.String("output", "", "Directory for downloaded media (overrides config)")
)

const sweepInterval = 5 * time.Minute

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *outputDir != "" {
		cfg.Download.Directory = *outputDir
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("port", cfg.Server.Port).Info("reelgrab starting")

	pool := identity.NewPool(identity.NewFabricator(), cfg.Extraction.SessionTimeout, cfg.Extraction.MaxIdleSessions)
	limiter := ratelimit.NewKeyedSlidingWindow(cfg.RateLimit.RequestsPerMinute, time.Minute)

	orchestrator := extractor.NewOrchestrator(pool, limiter, cfg.Extraction, log)
	resolver := extractor.NewResolver(orchestrator, cfg.Extraction.MaxRetries, cfg.Extraction.RetryDelay, log)

	store, err := storage.NewManager(cfg.Download.Directory)
	if err != nil {
		log.WithError(err).Fatal("failed to create download directory")
	}

	uploader, err := storage.NewCloudinaryUploader(&cfg.Cloudinary)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize Cloudinary")
	}
	if cfg.Cloudinary.Configured() {
		log.WithField("folder", cfg.Cloudinary.Folder).Info("Cloudinary upload enabled")
	} else {
		log.Info("Cloudinary not configured, files will be kept locally")
	}

	fetcher := download.NewFetcher(pool, store, uploader, cfg.Download.DownloadTimeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go server.RunSweeper(ctx, sweepInterval, func() {
		evicted := pool.Sweep()
		limiter.Sweep()
		if evicted > 0 {
			log.WithField("evicted", evicted).Debug("swept expired identities")
		}
	})

	srv := server.New(cfg, resolver, fetcher, log)
	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Fatal("server error")
	}

	log.Info("reelgrab stopped")
}
