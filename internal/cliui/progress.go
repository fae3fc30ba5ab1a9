package cliui

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// LogrusReporter is Reporter's default implementation: it narrates stage
// starts/steps/completions through logrus instead of drawing an interactive
// bar, since spec.md §1 scopes progress-bar UI out of the core lifecycle.
// Safe for concurrent Step calls from a worker pool.
type LogrusReporter struct {
	done int64
}

func (r *LogrusReporter) Start(label string, total int) {
	atomic.StoreInt64(&r.done, 0)
	logrus.WithFields(logrus.Fields{"stage": label, "total": total}).Info("progress: start")
}

func (r *LogrusReporter) Step(label string) {
	n := atomic.AddInt64(&r.done, 1)
	logrus.WithFields(logrus.Fields{"stage": label, "done": n}).Debug("progress: step")
}

func (r *LogrusReporter) Done(label string) {
	logrus.WithField("stage", label).Info("progress: done")
}
