// Command loadtest exercises a running swingcoach service end to end.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/swingcoach/internal/loadtest"
)

const (
	defaultSwings      = 200
	defaultUsers       = 20
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultDuplicates  = 0.1
	defaultMinSamples  = 3
	defaultSettle      = 10 * time.Second
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		swings     = flag.Int("swings", defaultSwings, "Number of hosted swings to analyze")
		users      = flag.Int("users", defaultUsers, "Distinct feedback authors")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		duplicates = flag.Float64("duplicates", defaultDuplicates, "Share of feedback resubmitted")
		minSamples = flag.Int("min-samples", defaultMinSamples, "Server min_feedback_samples")
		settle     = flag.Duration("settle", defaultSettle, "Time allowed for factors to converge")
		seed       = flag.Int64("seed", 0, "Verdict seed, 0 for time-based")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write accepted feedback as JSON")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Log every feedback submission")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}
	if err := loadtest.SetupLogging(*logFile); err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	cfg := &loadtest.Config{
		BaseURL:       *baseURL,
		NumSwings:     *swings,
		Users:         *users,
		Workers:       *workers,
		Timeout:       *timeout,
		DuplicateRate: *duplicates,
		MinSamples:    *minSamples,
		Settle:        *settle,
		Seed:          *seed,
		OutputFile:    *outputFile,
		Verbose:       *verbose,
	}
	if _, err := loadtest.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("load test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
