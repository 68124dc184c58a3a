// Package profiler - Rolling timings and runtime statistics reported through the logger.
package profiler

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MetricsCollector is polled on every report for point-in-time values.
type MetricsCollector interface {
	CollectMetrics() map[string]float64
}

// Options configures a Profiler.
type Options struct {
	// ReportInterval is how often Run logs a report. 0 disables periodic reports.
	ReportInterval time.Duration `json:"report_interval" yaml:"report_interval" mapstructure:"report_interval"`
	// MaxSamples bounds the rolling window kept per metric.
	MaxSamples int `json:"max_samples" yaml:"max_samples" mapstructure:"max_samples"`
}

// DefaultOptions reports every 10 seconds over the last 600 samples.
func DefaultOptions() Options {
	return Options{ReportInterval: 10 * time.Second, MaxSamples: 600}
}

// Summary describes one metric.
type Summary struct {
	// Avg is the mean over the rolling window.
	Avg float64 `json:"avg"`
	// Min and Max cover every sample since the profiler started.
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Samples is the window length.
	Samples int `json:"samples"`
	// Count is the total number of samples recorded.
	Count int64 `json:"count"`
}

// Snapshot is the profiler state at one instant.
type Snapshot struct {
	Uptime     time.Duration      `json:"uptime"`
	Goroutines int                `json:"goroutines"`
	HeapAlloc  uint64             `json:"heap_alloc"`
	NumGC      uint32             `json:"num_gc"`
	Metrics    map[string]Summary `json:"metrics"`
	// Operations are timings in milliseconds.
	Operations map[string]Summary `json:"operations"`
}

type window struct {
	values   []float64
	sum      float64
	min, max float64
	count    int64
}

func (w *window) add(v float64, maxSamples int) {
	if w.count == 0 || v < w.min {
		w.min = v
	}
	if w.count == 0 || v > w.max {
		w.max = v
	}
	w.values = append(w.values, v)
	w.sum += v
	w.count++
	if len(w.values) > maxSamples {
		w.sum -= w.values[0]
		w.values = w.values[1:]
	}
}

func (w *window) summary() Summary {
	s := Summary{Min: w.min, Max: w.max, Samples: len(w.values), Count: w.count}
	if len(w.values) > 0 {
		s.Avg = w.sum / float64(len(w.values))
	}
	return s
}

// Profiler keeps rolling statistics for named metrics and operation timings.
// It is safe for concurrent use.
type Profiler struct {
	opts   Options
	logger *zap.Logger
	start  time.Time

	mu         sync.Mutex
	metrics    map[string]*window
	operations map[string]*window
	collectors []MetricsCollector
}

// New creates a profiler. Zero options take their defaults and a nil logger disables reports.
func New(opts Options, logger *zap.Logger) *Profiler {
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultOptions().MaxSamples
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		opts:       opts,
		logger:     logger,
		start:      time.Now(),
		metrics:    make(map[string]*window),
		operations: make(map[string]*window),
	}
}

// AddCollector registers c to be polled on every report.
func (p *Profiler) AddCollector(c MetricsCollector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collectors = append(p.collectors, c)
}

// RecordMetric adds a sample to the named metric.
func (p *Profiler) RecordMetric(name string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(p.metrics, name, value)
}

// StartOperation starts timing name. Call the returned function when the operation ends.
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		ms := float64(time.Since(start)) / float64(time.Millisecond)
		p.mu.Lock()
		defer p.mu.Unlock()
		p.record(p.operations, name, ms)
	}
}

func (p *Profiler) record(into map[string]*window, name string, value float64) {
	w, ok := into[name]
	if !ok {
		w = &window{}
		into[name] = w
	}
	w.add(value, p.opts.MaxSamples)
}

// Collect polls every registered collector once.
func (p *Profiler) Collect() {
	p.mu.Lock()
	collectors := append([]MetricsCollector(nil), p.collectors...)
	p.mu.Unlock()

	for _, c := range collectors {
		values := c.CollectMetrics()
		p.mu.Lock()
		for name, v := range values {
			p.record(p.metrics, name, v)
		}
		p.mu.Unlock()
	}
}

// Snapshot returns the current statistics.
func (p *Profiler) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		Uptime:     time.Since(p.start),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		NumGC:      mem.NumGC,
		Metrics:    make(map[string]Summary, len(p.metrics)),
		Operations: make(map[string]Summary, len(p.operations)),
	}
	for name, w := range p.metrics {
		s.Metrics[name] = w.summary()
	}
	for name, w := range p.operations {
		s.Operations[name] = w.summary()
	}
	return s
}

// Report collects and logs one snapshot.
func (p *Profiler) Report() Snapshot {
	p.Collect()
	s := p.Snapshot()

	fields := []zap.Field{
		zap.Duration("uptime", s.Uptime.Truncate(time.Millisecond)),
		zap.Int("goroutines", s.Goroutines),
		zap.Uint64("heap_alloc", s.HeapAlloc),
		zap.Uint32("num_gc", s.NumGC),
	}
	for name, m := range s.Metrics {
		fields = append(fields, zap.Any("metric."+name, m))
	}
	for name, op := range s.Operations {
		fields = append(fields, zap.Any("operation."+name, op))
	}
	p.logger.Info("profile", fields...)
	return s
}

// Run reports every ReportInterval until ctx ends.
func (p *Profiler) Run(ctx context.Context) error {
	if p.opts.ReportInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(p.opts.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Report()
		}
	}
}
