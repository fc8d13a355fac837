package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/alex-li-fetchai/evitsam-agent/internal/agent"
	"github.com/alex-li-fetchai/evitsam-agent/internal/config"
	"github.com/alex-li-fetchai/evitsam-agent/internal/sam"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("evitsam-agent %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("evitsam-agent - image segmentation agent backed by EfficientViT-SAM")
			fmt.Println()
			fmt.Println("Usage: evitsam-agent [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  EVITSAM_BACKEND_URL     Segmentation backend base URL")
			fmt.Println("  EVITSAM_API_NAME        Predict route on the backend")
			fmt.Println("  EVITSAM_TIMEOUT         Per-inference timeout (e.g. 90s)")
			fmt.Println("  EVITSAM_CONCURRENCY     Max in-flight inference calls (default 1)")
			fmt.Println("  EVITSAM_OUTPUT_MIME     Reply image encoding (png/jpeg/webp)")
			fmt.Println("  EVITSAM_LOG_LEVEL=debug Enable debug logging")
			fmt.Println()
			fmt.Println("The agent reads chat envelopes on stdin and replies on stdout.")
			return
		}
	}

	// Logging goes to stderr; stdout carries the message channel.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	backend := sam.NewClient(cfg.BackendURL, cfg.APIName)
	if cfg.LogLevel == "debug" {
		log.Printf("evitsam-agent v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Backend %s%s, concurrency %d, timeout %s", cfg.BackendURL, cfg.APIName, cfg.Concurrency, cfg.Timeout)
		if err := backend.Ping(context.Background()); err != nil {
			log.Printf("Backend ping failed: %v", err)
		}
	}

	a := agent.New(backend, cfg)
	if err := a.Run(context.Background()); err != nil {
		log.Fatalf("Agent error: %v", err)
	}
}
