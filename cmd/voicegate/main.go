package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicegate/voicegate/internal/audio"
	"github.com/voicegate/voicegate/internal/config"
	"github.com/voicegate/voicegate/internal/embed"
	"github.com/voicegate/voicegate/internal/models"
	"github.com/voicegate/voicegate/internal/profile"
	"github.com/voicegate/voicegate/internal/server"
	"github.com/voicegate/voicegate/internal/speaker"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/voicegate/config.yaml)")
	downloadModel := flag.Bool("download-model", false, "download the embedding model and exit")
	writeConfig := flag.Bool("write-config", false, "write the default config file and exit")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	if *downloadModel {
		if err := models.DownloadEmbeddingModel(); err != nil {
			log.Fatal().Err(err).Msg("model download failed")
		}
		return
	}

	if *writeConfig {
		path, err := config.WriteDefault()
		if err != nil {
			log.Fatal().Err(err).Msg("writing default config failed")
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	printBanner(cfg)

	// Open the profile store
	store, err := profile.Open(cfg.Database.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening profile store")
	}
	defer store.Close()

	// The embedder loads the ONNX model lazily on first use, so startup
	// stays fast when verification never runs.
	embedder := embed.NewOnnxEmbedder(embed.OnnxConfig{
		LibraryPath: cfg.Model.LibraryPath,
		ModelPath:   cfg.Model.Path,
		Dim:         cfg.Model.Dimension,
		SampleRate:  cfg.Model.SampleRate,
	})
	defer embedder.Close()

	svc := speaker.NewService(speaker.Config{
		Enabled:             cfg.Verification.Enabled,
		SimilarityThreshold: cfg.Verification.SimilarityThreshold,
		AmplitudeThreshold:  cfg.Verification.AmplitudeThreshold,
	}, store, embedder, log)

	// Admin API
	srv := server.New(svc, log)
	go func() {
		if err := srv.Run(cfg.Server.ListenAddr); err != nil {
			log.Fatal().Err(err).Msg("admin API failed")
		}
	}()

	// Signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if !cfg.Audio.Enabled {
		log.Info().Msg("live capture disabled, serving API only")
		<-sigCh
		log.Info().Msg("shutting down")
		return
	}

	// Live capture loop
	recorder, err := audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.SegmentSeconds)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing audio recorder")
	}
	defer recorder.Close()

	if err := recorder.Start(); err != nil {
		log.Fatal().Err(err).Msg("starting capture")
	}
	log.Info().
		Uint32("sample_rate", cfg.Audio.SampleRate).
		Float64("segment_seconds", cfg.Audio.SegmentSeconds).
		Msg("capturing")

	ctx := context.Background()
	segments := recorder.Segments()
	for {
		select {
		case seg, ok := <-segments:
			if !ok {
				log.Info().Msg("capture stopped")
				return
			}

			result, err := svc.Verify(ctx, cfg.Verification.UserID, seg)
			if err != nil {
				log.Error().Err(err).Msg("verification failed")
				continue
			}

			log.Info().
				Bool("is_user", result.IsUser).
				Float64("confidence", result.Confidence).
				Str("method", string(result.Method)).
				Msg("segment verified")

		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			recorder.Stop()
			if dropped := recorder.Dropped(); dropped > 0 {
				log.Warn().Uint64("segments", dropped).Msg("segments dropped during capture")
			}
			return
		}
	}
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string, log zerolog.Logger) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Info().Str("path", defaultPath).Msg("config loaded")
		return cfg, nil
	}

	// No config file, use defaults
	log.Info().Msg("no config file found, using defaults")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== voicegate ===")
	fmt.Printf("  Model:    %s\n", cfg.Model.Path)
	fmt.Printf("  Database: %s\n", cfg.Database.Path)
	fmt.Printf("  Audio:    %dHz, %dch (capture: %v)\n", cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.Enabled)
	fmt.Printf("  Verify:   user=%s threshold=%.2f (enabled: %v)\n",
		cfg.Verification.UserID, cfg.Verification.SimilarityThreshold, cfg.Verification.Enabled)
	fmt.Printf("  API:      %s\n", cfg.Server.ListenAddr)
	fmt.Printf("  Log:      %s\n", cfg.LogLevel)
	fmt.Println("=================")
}
