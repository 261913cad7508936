package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/crs"
	"github.com/ironsheep/map-georef/internal/geocode"
	"github.com/ironsheep/map-georef/internal/ocr"
	"github.com/ironsheep/map-georef/internal/pipeline"
	"github.com/ironsheep/map-georef/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("map-georef-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("map-georef-mcp - MCP server for scanned map analysis and georeferencing")
			fmt.Println()
			fmt.Println("Usage: map-georef-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  MAPGEO_CONFIG=<path>        YAML configuration file")
			fmt.Println("  MAPGEO_LOG_LEVEL=debug      Enable debug logging")
			fmt.Println("  TESSDATA_PREFIX=<dir>       Tesseract language data")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if config.Debug() {
		log.Printf("Map Georef MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if info := ocr.Info(); !info.Available {
		log.Printf("warning: tesseract not available, text labels will not be recognized")
	}

	transformer := crs.NewProj()
	defer transformer.Close()

	p := pipeline.New(cfg, ocr.NewTesseract(), geocode.NewNominatim(cfg.Geocoding), transformer)

	server.Version = Version
	srv := server.New(cfg, p)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
