package services

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlerts            = 100
)

var failedLogins = promauto.NewCounter(prometheus.CounterOpts{
	Name: "law_office_failed_logins_total",
	Help: "Login attempts rejected by the roster check.",
})

// SecurityAlert is raised when one address keeps failing to log in.
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Username  string    `json:"username"`
	Reason    string    `json:"reason"`
}

// LoginMonitor counts failed logins per address and raises an alert when an
// address reaches the threshold inside the window. Alerts for the same address
// are rate limited to one per cooldown.
type LoginMonitor struct {
	mu       sync.Mutex
	now      func() time.Time
	failures map[string][]time.Time
	alerted  map[string]time.Time
	alerts   []SecurityAlert // newest first
}

// NewLoginMonitor creates a monitor using the system clock.
func NewLoginMonitor() *LoginMonitor {
	return &LoginMonitor{
		now:      time.Now,
		failures: make(map[string][]time.Time),
		alerted:  make(map[string]time.Time),
	}
}

// TrackFailedLogin records a failure and reports whether it raised an alert.
func (m *LoginMonitor) TrackFailedLogin(ip, username string) bool {
	failedLogins.Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-failedLoginWindow)
	recent := m.failures[ip][:0]
	for _, t := range m.failures[ip] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.failures[ip] = recent

	if len(recent) < failedLoginThreshold {
		return false
	}
	if last, ok := m.alerted[ip]; ok && now.Sub(last) < alertCooldown {
		return false
	}
	m.alerted[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Username: username, Reason: "Multiple failed logins detected"}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}

	log.Warn().
		Str("event_type", "security_alert").
		Str("ip", ip).
		Str("username", username).
		Int("failures", len(recent)).
		Msg(alert.Reason)
	return true
}

// RecentAlerts returns a copy of the alert history, newest first.
func (m *LoginMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SecurityAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Prune drops failure counters and alert marks that can no longer matter.
func (m *LoginMonitor) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for ip, attempts := range m.failures {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failedLoginWindow {
			delete(m.failures, ip)
		}
	}
	for ip, last := range m.alerted {
		if now.Sub(last) > alertCooldown {
			delete(m.alerted, ip)
		}
	}
}
