package loadtest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/swingcoach/pkg/logger"
)

// SetupLogging sends log output to stderr and, when logFile is set, to that
// file as well.
func SetupLogging(logFile string) error {
	if logFile == "" {
		return logger.Init()
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	return logger.InitWithWriter(io.MultiWriter(os.Stderr, file))
}

// ShowHelp prints usage information.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`swingcoach load test

Submits hosted swing analyses, posts feedback against them with deliberate
duplicates, and checks that /adjustments converges on the factors implied by
the accepted feedback. Run it against a fresh database.

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string         Base URL of the service (default "http://localhost:9080")
  -swings int         Number of hosted swings to analyze (default 200)
  -users int          Distinct feedback authors (default 20)
  -workers int        Concurrent workers (default CPU cores * 2)
  -duplicates float   Share of feedback resubmitted (default 0.1)
  -min-samples int    Server min_feedback_samples (default 3)
  -settle duration    Time allowed for factors to converge (default 10s)
  -seed int           Verdict seed, 0 for time-based
  -timeout duration   HTTP request timeout (default 30s)
  -output string      Write accepted feedback as JSON
  -log string         Also write logs to this file
  -verbose            Log every feedback submission
  -help               Show this help message
`)
}
