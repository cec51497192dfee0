// Package loadtest drives a running service end to end: it submits hosted
// swing analyses, posts feedback against them (including deliberate
// duplicates) and checks that the learned adjustment factors converge to the
// value implied by the accepted feedback.
package loadtest

import "time"

// Config holds configuration for a load test run.
type Config struct {
	BaseURL       string        // Base URL of the service
	NumSwings     int           // Number of hosted swings to analyze
	Users         int           // Number of distinct feedback authors
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	DuplicateRate float64       // Share of feedback resubmitted to exercise write-once
	MinSamples    int           // Server-side min_feedback_samples
	Settle        time.Duration // How long to wait for factors to converge
	Seed          int64         // Seed for verdict generation; 0 means time-based
	OutputFile    string        // Output file for the submitted feedback
	Verbose       bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	AnalysesSubmitted int
	AnalysesMock      int
	AnalysesFailed    int
	FeedbackSubmitted int
	FeedbackRecorded  int
	FeedbackDuplicate int
	FeedbackFailed    int
	ExpectedOverall   int
	ObservedOverall   int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
