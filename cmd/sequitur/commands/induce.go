/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: induce.go
Description: Induce command implementation. Tokenizes the input, runs the engine
over it and renders the grammar, with optional metrics, report and profiles.
*/

package commands

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/sequitur/pkg/formatter"
	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/kleascm/sequitur/pkg/inference"
	"github.com/kleascm/sequitur/pkg/logging"
	"github.com/kleascm/sequitur/pkg/monitoring"
	"github.com/kleascm/sequitur/pkg/reporting"
	"github.com/kleascm/sequitur/pkg/tokenize"
	"github.com/kleascm/sequitur/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunSummary is the JSON record of a run written to --summary-dir
type RunSummary struct {
	RunID     string          `json:"run_id"`
	Input     string          `json:"input"`
	Tokenizer string          `json:"tokenizer"`
	Duration  time.Duration   `json:"duration"`
	Stats     inference.Stats `json:"stats"`
	Rules     int             `json:"rules"`
	Symbols   int             `json:"symbols"`
	LogFile   string          `json:"log_file,omitempty"`
}

// RunInduce induces the grammar of the input and renders it
func RunInduce(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	config := inference.DefaultConfig()
	config.Audit = viper.GetBool("induce.audit")
	config.MaxRestorePasses = viper.GetInt("induce.max_restore_passes")
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tokenizerName := viper.GetString("induce.tokenizer")
	if tokenizerName == "" {
		tokenizerName = "chars"
	}
	tokenizer, err := tokenize.ByName(tokenizerName)
	if err != nil {
		return err
	}
	format := viper.GetString("induce.format")
	if format == "" {
		format = "text"
	}
	if err := formatter.CheckName(format); err != nil {
		return err
	}

	input, inputName, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	tokens, err := tokenizer.Tokenize(input)
	input.Close()
	if err != nil {
		return fmt.Errorf("failed to tokenize %s: %w", inputName, err)
	}

	runID := uuid.New().String()
	log := logger.GetLogger().WithFields(logrus.Fields{
		"input":     inputName,
		"tokenizer": tokenizer.Name(),
	})

	opts := []inference.Option{
		inference.WithConfig(config),
		inference.WithLogger(log),
		inference.WithRunID(runID),
	}

	metricsOut := viper.GetString("induce.metrics_out")
	var metrics *monitoring.InductionMetrics
	if metricsOut != "" {
		metrics, err = monitoring.NewInductionMetrics(prometheus.Labels{"tokenizer": tokenizer.Name()})
		if err != nil {
			return err
		}
		opts = append(opts, inference.WithRecorder(metrics))
	}

	var profiler *monitoring.Profiler
	if dir := viper.GetString("induce.profile_dir"); dir != "" {
		profiler = monitoring.NewProfiler(&monitoring.ProfilerConfig{
			OutputDir:     dir,
			CPUProfile:    true,
			MemoryProfile: true,
		}, log)
		if err := profiler.Start(); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
	}

	engine := inference.NewEngine(opts...)
	start := time.Now()
	feedErr := inference.Feed(engine, slices.Values(tokens))
	duration := time.Since(start)

	if profiler != nil {
		if _, err := profiler.Stop(); err != nil {
			logger.GetLogger().WithError(err).Warn("Failed to write profiles")
		}
	}
	if feedErr != nil {
		reportFailure(logger, runID, feedErr)
		return fmt.Errorf("induction failed: %w", feedErr)
	}

	if err := writeGrammar(cmd, engine, format, viper.GetString("induce.output")); err != nil {
		return err
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(metricsOut); err != nil {
			return err
		}
	}

	if dir := viper.GetString("induce.report_dir"); dir != "" {
		data := reporting.NewReportData(engine, "Sequitur Induction Report")
		data.Input = inputName
		data.Tokenizer = tokenizer.Name()
		data.Duration = duration
		data.Version = cmd.Root().Version
		if _, err := reporting.NewReportGenerator(dir, log).GenerateReport(data); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
	}

	stats := engine.Stats()
	if dir := viper.GetString("induce.summary_dir"); dir != "" {
		summary := RunSummary{
			RunID:     runID,
			Input:     inputName,
			Tokenizer: tokenizer.Name(),
			Duration:  duration,
			Stats:     stats,
			Rules:     engine.Grammar().Len(),
			Symbols:   engine.Grammar().SymbolCount(),
			LogFile:   logger.LogPath(),
		}
		path, err := utils.WriteSummary(dir, "induce", cmd.Root().Version, summary)
		if err != nil {
			return err
		}
		log.WithField("file", path).Debug("Run summary written")
	}

	logger.LogStats(runID, stats.Counters(), logrus.Fields{
		"input":    inputName,
		"duration": duration,
		"rules":    engine.Grammar().Len(),
		"symbols":  engine.Grammar().SymbolCount(),
	})
	return nil
}

func writeGrammar(cmd *cobra.Command, engine *inference.Engine, format, path string) error {
	out, err := createOutput(cmd, path)
	if err != nil {
		return err
	}
	renderer, err := formatter.New(format, out, engine.RunID())
	if err != nil {
		out.Close()
		return err
	}
	if err := formatter.RenderGrammar(engine.Grammar(), renderer); err != nil {
		out.Close()
		return fmt.Errorf("failed to render grammar: %w", err)
	}
	return out.Close()
}

func reportFailure(logger *logging.Logger, runID string, err error) {
	var ce *grammar.ConsistencyError
	if errors.As(err, &ce) {
		logger.LogConsistency(err, ce.Dump, logrus.Fields{"run_id": runID, "op": ce.Op})
	}
}
