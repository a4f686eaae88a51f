/*
Copyright © 2025 Equilab
*/
package utils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config carries the paths of one preparation run. Fields left empty in the
// config file fall back to conventional names under OutputDir.
type Config struct {
	ExcelFile    string
	RawDataDir   string
	OutputDir    string
	MetadataFile string
	SummaryFile  string
	SummaryChart string
	ManifestFile string
	ReadStats    string
	ReadChart    string
	LogFile      string
	Threads      string
}

// ReadConfig parses the flat key:value config file.
func ReadConfig(configPath string) (Config, error) {
	configFile, err := os.Open(configPath)
	if err != nil {
		return Config{}, err
	}
	defer configFile.Close()
	var cfg Config

	scanner := bufio.NewScanner(configFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "ExcelFile":
			cfg.ExcelFile = value
		case "RawDataDir":
			cfg.RawDataDir = value
		case "OutputDir":
			cfg.OutputDir = value
		case "MetadataFile":
			cfg.MetadataFile = value
		case "SummaryFile":
			cfg.SummaryFile = value
		case "SummaryChart":
			cfg.SummaryChart = value
		case "ManifestFile":
			cfg.ManifestFile = value
		case "ReadStats":
			cfg.ReadStats = value
		case "ReadChart":
			cfg.ReadChart = value
		case "LogFile":
			cfg.LogFile = value
		case "threads":
			cfg.Threads = value
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.OutputDir == "" {
		return
	}
	if cfg.MetadataFile == "" {
		cfg.MetadataFile = filepath.Join(cfg.OutputDir, "sample-metadata.tsv")
	}
	if cfg.SummaryFile == "" {
		cfg.SummaryFile = filepath.Join(cfg.OutputDir, "metadata-summary.tsv")
	}
	if cfg.SummaryChart == "" {
		cfg.SummaryChart = filepath.Join(cfg.OutputDir, "metadata-summary.html")
	}
	if cfg.ManifestFile == "" {
		cfg.ManifestFile = filepath.Join(cfg.OutputDir, "manifest.tsv")
	}
	if cfg.ReadStats == "" {
		cfg.ReadStats = filepath.Join(cfg.OutputDir, "read-stats.tsv")
	}
	if cfg.ReadChart == "" {
		cfg.ReadChart = filepath.Join(cfg.OutputDir, "read-stats.html")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.OutputDir, "prep.log")
	}
}

// LogEntry is one structured record of the JSON run log.
type LogEntry struct {
	Timestamp string `json:"time"`
	Level     string `json:"level"`
	Tool      string `json:"msg"`
	Program   string `json:"PROGRAM"`
	Status    string `json:"STATUS"`
}

// ParseLogFile reads the JSON run log, skipping lines that do not parse.
func ParseLogFile(logPath string) []LogEntry {
	f, err := os.Open(logPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// StageHasCompleted reports whether the run log records a COMPLETED entry
// for the named stage.
func StageHasCompleted(entries []LogEntry, program string) bool {
	for _, entry := range entries {
		if entry.Program == program && entry.Status == "COMPLETED" {
			return true
		}
	}
	return false
}

// NewRunLogger opens the JSON run log for appending. The caller closes the
// returned file.
func NewRunLogger(logPath string) (*slog.Logger, *os.File, error) {
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logger, logFile, nil
}
