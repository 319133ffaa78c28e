package main

import (
	"flag"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/fittrack/internal/logging"
	fittrackmcp "github.com/meltforce/fittrack/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	baseURL := flag.String("url", envOr("FITTRACK_URL", "http://fittrack"), "FitTrack server base URL")
	apiKey := flag.String("api-key", os.Getenv("FITTRACK_API_KEY"), "API key (or FITTRACK_API_KEY)")
	weight := flag.Float64("default-weight", 0, "body weight in pounds for plans that store none")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	// stdout carries the protocol.
	log, closer := logging.New(logging.Params{Level: *level, Console: os.Stderr})
	defer closer.Close()

	if *apiKey == "" {
		fmt.Fprintln(os.Stderr, "an API key is required: -api-key or FITTRACK_API_KEY")
		os.Exit(2)
	}

	s := fittrackmcp.New(fittrackmcp.Options{
		DataSource:       fittrackmcp.NewHTTPClient(*baseURL, *apiKey),
		DefaultWeightLbs: *weight,
		Log:              log,
	}, Version)

	log.Info("FitTrack MCP starting", "version", Version, "url", *baseURL)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
