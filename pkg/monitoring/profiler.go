/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: profiler.go
Description: Profiling of induction runs. The profiler brackets a run with a CPU
profile and writes a heap profile when it stops.
*/

package monitoring

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProfilerType represents the type of profiling
type ProfilerType string

const (
	ProfilerTypeCPU    ProfilerType = "cpu"
	ProfilerTypeMemory ProfilerType = "memory"
)

// ProfilerConfig represents profiling configuration
type ProfilerConfig struct {
	OutputDir     string `json:"output_dir" mapstructure:"output_dir"`
	CPUProfile    bool   `json:"cpu_profile" mapstructure:"cpu_profile"`
	MemoryProfile bool   `json:"memory_profile" mapstructure:"memory_profile"`
}

// Validate checks the profiler configuration
func (c *ProfilerConfig) Validate() error {
	if c.OutputDir == "" && (c.CPUProfile || c.MemoryProfile) {
		return fmt.Errorf("profile output directory is required")
	}
	return nil
}

// ProfileResult describes one written profile
type ProfileResult struct {
	Type       ProfilerType  `json:"type"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	OutputFile string        `json:"output_file"`
}

// Profiler writes pprof profiles around an induction run.
type Profiler struct {
	config *ProfilerConfig
	logger logrus.FieldLogger

	mu      sync.Mutex
	running bool
	cpuFile *os.File
	results map[ProfilerType]*ProfileResult
}

// NewProfiler creates a new profiler
func NewProfiler(config *ProfilerConfig, logger logrus.FieldLogger) *Profiler {
	return &Profiler{
		config:  config,
		logger:  logger,
		results: make(map[ProfilerType]*ProfileResult),
	}
}

// Start begins profiling
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("profiler already running")
	}
	if err := p.config.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if p.config.CPUProfile {
		if err := p.startCPUProfile(); err != nil {
			return err
		}
	}
	if p.config.MemoryProfile {
		p.results[ProfilerTypeMemory] = &ProfileResult{
			Type:       ProfilerTypeMemory,
			StartTime:  time.Now(),
			OutputFile: p.profilePath(ProfilerTypeMemory),
		}
	}

	p.running = true
	p.logger.Debug("Profiler started")
	return nil
}

// Stop ends profiling and returns the written profiles.
func (p *Profiler) Stop() ([]ProfileResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil, fmt.Errorf("profiler not running")
	}
	p.running = false

	var out []ProfileResult
	if result, ok := p.results[ProfilerTypeCPU]; ok {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			return nil, fmt.Errorf("failed to close CPU profile: %w", err)
		}
		p.finish(result)
		out = append(out, *result)
	}
	if result, ok := p.results[ProfilerTypeMemory]; ok {
		if err := writeHeapProfile(result.OutputFile); err != nil {
			return nil, err
		}
		p.finish(result)
		out = append(out, *result)
	}

	p.results = make(map[ProfilerType]*ProfileResult)
	return out, nil
}

func (p *Profiler) startCPUProfile() error {
	outputFile := p.profilePath(ProfilerTypeCPU)
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	p.cpuFile = file
	p.results[ProfilerTypeCPU] = &ProfileResult{
		Type:       ProfilerTypeCPU,
		StartTime:  time.Now(),
		OutputFile: outputFile,
	}
	return nil
}

func (p *Profiler) finish(result *ProfileResult) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	p.logger.WithFields(logrus.Fields{
		"type": result.Type,
		"file": result.OutputFile,
	}).Info("Profile written")
}

func (p *Profiler) profilePath(t ProfilerType) string {
	return filepath.Join(p.config.OutputDir, fmt.Sprintf("%s_%d.prof", t, time.Now().Unix()))
}

func writeHeapProfile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile file: %w", err)
	}
	defer file.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(file); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	return nil
}
