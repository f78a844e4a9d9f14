package pressure

import (
	"context"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

type HeapMonitorConfig struct {
	Interval time.Duration

	// WarningHeapBytes and CriticalHeapBytes are thresholds of the live
	// heap, zero disables the level.
	WarningHeapBytes  uint64
	CriticalHeapBytes uint64

	Logger *logrus.Entry
}

func DefaultHeapMonitorConfig() HeapMonitorConfig {
	return HeapMonitorConfig{
		Interval: 5 * time.Second,
	}
}

type readMemStatsFunc func(stats *runtime.MemStats)

// HeapMonitor polls the Go runtime and notifies the broadcaster when the
// heap crosses a threshold. A level is reported once per crossing.
type HeapMonitor struct {
	config      HeapMonitorConfig
	broadcaster *Broadcaster
	readStats   readMemStatsFunc
	log         *logrus.Entry

	reported int
}

func NewHeapMonitor(config HeapMonitorConfig, broadcaster *Broadcaster) *HeapMonitor {
	if config.Interval <= 0 {
		config.Interval = DefaultHeapMonitorConfig().Interval
	}

	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &HeapMonitor{
		config:      config,
		broadcaster: broadcaster,
		readStats:   runtime.ReadMemStats,
		log:         log,
		reported:    -1,
	}
}

func (m *HeapMonitor) StartMonitor(ctx context.Context) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check()
		}
	}
}

func (m *HeapMonitor) check() {
	stats := runtime.MemStats{}
	m.readStats(&stats)

	current := -1
	if m.config.WarningHeapBytes > 0 && stats.HeapAlloc >= m.config.WarningHeapBytes {
		current = int(LevelWarning)
	}
	if m.config.CriticalHeapBytes > 0 && stats.HeapAlloc >= m.config.CriticalHeapBytes {
		current = int(LevelCritical)
	}

	if current > m.reported {
		level := Level(current)
		m.log.WithFields(logrus.Fields{
			"heap":  stats.HeapAlloc,
			"level": level.String(),
		}).Warn("memory pressure detected")

		<-m.broadcaster.Notify(level)
	}

	m.reported = current
}
