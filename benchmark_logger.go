package banyan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// BenchmarkResult captures the result of a single benchmark trial
type BenchmarkResult struct {
	Name           string        `json:"name"`
	Status         string        `json:"status"` // "pass" or "fail"
	Network        string        `json:"network,omitempty"`
	Elements       int           `json:"elements,omitempty"`
	NsPerElement   float64       `json:"ns_per_element,omitempty"`
	ElementsPerSec float64       `json:"elements_per_sec,omitempty"`
	Mismatches     int           `json:"mismatches,omitempty"`
	Duration       time.Duration `json:"duration,omitempty"`
	Error          string        `json:"error,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// BenchmarkLogger manages logging of benchmark results to file
type BenchmarkLogger struct {
	mu          sync.Mutex
	results     []BenchmarkResult
	logDir      string
	sessionFile string
}

var globalLogger = &BenchmarkLogger{
	logDir: "benchmark_logs",
}

// InitBenchmarkLogger initializes the logger for a new benchmark session
func InitBenchmarkLogger(sessionName string) error {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	if err := os.MkdirAll(globalLogger.logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	globalLogger.sessionFile = filepath.Join(globalLogger.logDir,
		fmt.Sprintf("%s_%s.json", sessionName, timestamp))

	globalLogger.results = nil

	return globalLogger.flush()
}

// LogBenchmarkResult logs a single benchmark result
func LogBenchmarkResult(result BenchmarkResult) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	result.Timestamp = time.Now()
	globalLogger.results = append(globalLogger.results, result)

	// Flush to disk immediately to avoid losing data on crash
	globalLogger.flush()
}

// LogTrial logs the outcome of one harness trial
func LogTrial(r TrialResult, err error) {
	if err != nil {
		LogBenchmarkResult(BenchmarkResult{
			Name:    r.Name,
			Status:  "fail",
			Network: r.Network,
			Error:   err.Error(),
		})
		return
	}
	status := "pass"
	if !r.Passed() {
		status = "fail"
	}
	LogBenchmarkResult(BenchmarkResult{
		Name:           r.Name,
		Status:         status,
		Network:        r.Network,
		Elements:       r.Elements,
		NsPerElement:   float64(r.Elapsed.Nanoseconds()) / float64(r.Elements),
		ElementsPerSec: r.ElementsPerSec,
		Mismatches:     r.Mismatches,
		Duration:       r.Elapsed,
	})
}

// flush writes results to disk
func (bl *BenchmarkLogger) flush() error {
	if bl.sessionFile == "" {
		return nil // Not initialized
	}

	data, err := json.MarshalIndent(bl.results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	return os.WriteFile(bl.sessionFile, data, 0644)
}

// GetLatestLogFile returns the path to the most recent log file
func GetLatestLogFile() (string, error) {
	files, err := filepath.Glob(filepath.Join(globalLogger.logDir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no log files found")
	}

	var latest string
	var latestTime time.Time
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latest = file
			latestTime = info.ModTime()
		}
	}

	return latest, nil
}

// PrintBenchmarkSummary prints a summary of the latest benchmark session
func PrintBenchmarkSummary() error {
	logFile, err := GetLatestLogFile()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		return err
	}

	var results []BenchmarkResult
	if err := json.Unmarshal(data, &results); err != nil {
		return err
	}

	fmt.Printf("\nBenchmark Summary from %s:\n", filepath.Base(logFile))
	fmt.Println(strings.Repeat("=", 62))

	passed, failed := 0, 0
	for _, r := range results {
		switch r.Status {
		case "pass":
			passed++
			fmt.Printf("✓ %-36s %10.2f ns/elem %12.3e elem/s\n",
				r.Name, r.NsPerElement, r.ElementsPerSec)
		case "fail":
			failed++
			if r.Error != "" {
				fmt.Printf("✗ %-36s FAILED: %s\n", r.Name, r.Error)
			} else {
				fmt.Printf("✗ %-36s FAILED: %d mismatches\n", r.Name, r.Mismatches)
			}
		}
	}

	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)

	return nil
}
