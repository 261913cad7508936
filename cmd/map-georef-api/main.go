package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/map-georef/internal/api"
	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/crs"
	"github.com/ironsheep/map-georef/internal/export"
	"github.com/ironsheep/map-georef/internal/geocode"
	"github.com/ironsheep/map-georef/internal/imaging"
	"github.com/ironsheep/map-georef/internal/jobs"
	"github.com/ironsheep/map-georef/internal/ocr"
	"github.com/ironsheep/map-georef/internal/pipeline"
	"github.com/ironsheep/map-georef/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "YAML configuration file")
	addr := flag.String("addr", "", "listen address (overrides server.address)")
	showVersion := flag.Bool("version", false, "print version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("map-georef-api %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}

	if info := ocr.Info(); !info.Available {
		log.Printf("warning: tesseract not available, text labels will not be recognized")
	}

	transformer := crs.NewProj()
	defer transformer.Close()

	p := pipeline.New(cfg, ocr.NewTesseract(), geocode.NewNominatim(cfg.Geocoding), transformer)
	cache := imaging.NewImageCacheWithDPI(cfg.PDF.DPI)
	st := store.New(cfg.Server.UploadDir)
	mgr := jobs.NewManager(st, p, cache)

	e := api.New(&api.Dependencies{
		Config:   cfg,
		Store:    st,
		Jobs:     mgr,
		Exporter: export.NewExporter(cfg.Server.ExportDir),
		Cache:    cache,
		Version:  Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Map Georef API v%s listening on %s", Version, cfg.Server.Address)
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("warning: shutdown: %v", err)
	}
	mgr.Wait()
}
