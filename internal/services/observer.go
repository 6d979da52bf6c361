package services

import (
	"path/filepath"
	"time"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// LogObserver reports load progress through a Logger. It is the observer
// used when no progress display is attached.
type LogObserver struct {
	logger pgbulk.Logger
}

func NewLogObserver(logger pgbulk.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) LoadStarted(index, total int, load pgbulk.TableLoad) {
	o.logger.Verbose("[%d/%d] Loading %s from %s", index+1, total, load.Table, filepath.Base(load.File))
}

func (o *LogObserver) LoadFinished(index, total int, result pgbulk.LoadResult) {
	if result.Failed() {
		o.logger.Error("[%d/%d] ✗ %s: %s", index+1, total, result.Table, result.Diagnostic.Error())
		return
	}
	o.logger.Info("[%d/%d] ✓ %s: %d rows (%s)", index+1, total, result.Table, result.RowsCopied, result.Duration.Round(time.Millisecond))
}

// MultiObserver fans callbacks out to every observer in order.
type MultiObserver []pgbulk.LoadObserver

func (m MultiObserver) LoadStarted(index, total int, load pgbulk.TableLoad) {
	for _, o := range m {
		o.LoadStarted(index, total, load)
	}
}

func (m MultiObserver) LoadFinished(index, total int, result pgbulk.LoadResult) {
	for _, o := range m {
		o.LoadFinished(index, total, result)
	}
}

var (
	_ pgbulk.LoadObserver = (*LogObserver)(nil)
	_ pgbulk.LoadObserver = MultiObserver(nil)
)
