// Package keepalive watches the bot's backing services (session store, local model server) and
// raises an alert when one stays down.
package keepalive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Soypete/star-interview-bot/logging"
	"github.com/Soypete/star-interview-bot/metrics"
	"golang.org/x/sync/errgroup"
)

// FailureThreshold is the number of failed checks in a row that triggers the first alert.
const FailureThreshold = 3

type dependencyState struct {
	name                string
	checker             Checker
	lastCheck           time.Time
	lastAlert           time.Time
	lastError           string
	consecutiveFailures int
	healthy             bool
	mu                  sync.RWMutex
}

// Status is a point in time view of one dependency.
type Status struct {
	Name                string    `json:"name"`
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastCheck           time.Time `json:"last_check"`
	LastError           string    `json:"last_error,omitempty"`
}

// Monitor checks every registered dependency on an interval.
type Monitor struct {
	deps          map[string]*dependencyState
	checkInterval time.Duration
	alertInterval time.Duration
	checkTimeout  time.Duration
	alerter       Alerter
	logger        *logging.Logger
}

// NewMonitor creates a monitor. Alerts repeat at most once per alertInterval while a dependency stays down.
func NewMonitor(checks map[string]Checker, checkInterval, alertInterval time.Duration, alerter Alerter, logger *logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.Default()
	}
	if alerter == nil {
		alerter = LogAlerter{Logger: logger}
	}
	m := &Monitor{
		deps:          make(map[string]*dependencyState, len(checks)),
		checkInterval: checkInterval,
		alertInterval: alertInterval,
		checkTimeout:  10 * time.Second,
		alerter:       alerter,
		logger:        logger,
	}
	for name, c := range checks {
		m.deps[name] = &dependencyState{name: name, checker: c, healthy: true}
		metrics.DependencyUp.WithLabelValues(name).Set(1)
	}
	return m
}

// Start runs checks until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	if len(m.deps) == 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	m.checkAll(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("dependency monitor shutting down")
			return nil
		case <-ticker.C:
			m.checkAll(ctx)
		}
	}
}

func (m *Monitor) checkAll(ctx context.Context) {
	var eg errgroup.Group
	for _, dep := range m.deps {
		dep := dep
		eg.Go(func() error {
			m.check(ctx, dep)
			return nil
		})
	}
	_ = eg.Wait()
}

func (m *Monitor) check(ctx context.Context, dep *dependencyState) {
	checkCtx, cancel := context.WithTimeout(ctx, m.checkTimeout)
	err := dep.checker.Ping(checkCtx)
	cancel()

	if msg := m.record(dep, err); msg != "" {
		if alertErr := m.alerter.SendAlert(ctx, dep.name, msg); alertErr != nil {
			m.logger.Error("failed to send alert", "dependency", dep.name, "error", alertErr.Error())
		}
	}
}

// record updates dep with the result of a check and returns the alert to send, if any.
func (m *Monitor) record(dep *dependencyState, err error) string {
	dep.mu.Lock()
	defer dep.mu.Unlock()
	dep.lastCheck = time.Now()

	if err == nil {
		var msg string
		if !dep.healthy {
			m.logger.Info("dependency recovered", "dependency", dep.name, "afterFailures", dep.consecutiveFailures)
			msg = fmt.Sprintf("%s has recovered after %d failed checks", dep.name, dep.consecutiveFailures)
		}
		dep.healthy = true
		dep.consecutiveFailures = 0
		dep.lastError = ""
		metrics.DependencyUp.WithLabelValues(dep.name).Set(1)
		return msg
	}

	dep.consecutiveFailures++
	dep.healthy = false
	dep.lastError = err.Error()
	metrics.DependencyUp.WithLabelValues(dep.name).Set(0)
	m.logger.Warn("dependency check failed", "dependency", dep.name, "consecutiveFailures", dep.consecutiveFailures, "error", err.Error())

	switch {
	case dep.consecutiveFailures == FailureThreshold:
		dep.lastAlert = time.Now()
		return fmt.Sprintf("%s is offline after %d failed checks: %s", dep.name, FailureThreshold, err.Error())
	case dep.consecutiveFailures > FailureThreshold && time.Since(dep.lastAlert) >= m.alertInterval:
		dep.lastAlert = time.Now()
		return fmt.Sprintf("%s is still offline (consecutive failures: %d)", dep.name, dep.consecutiveFailures)
	}
	return ""
}

// Statuses returns the state of every dependency, sorted by name.
func (m *Monitor) Statuses() []Status {
	out := make([]Status, 0, len(m.deps))
	for _, dep := range m.deps {
		dep.mu.RLock()
		out = append(out, Status{
			Name:                dep.name,
			Healthy:             dep.healthy,
			ConsecutiveFailures: dep.consecutiveFailures,
			LastCheck:           dep.lastCheck,
			LastError:           dep.lastError,
		})
		dep.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Handler serves the statuses as JSON: 200 when everything is healthy, 503 otherwise.
func (m *Monitor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		statuses := m.Statuses()
		code := http.StatusOK
		for _, s := range statuses {
			if !s.Healthy {
				code = http.StatusServiceUnavailable
				break
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(statuses)
	})
}
