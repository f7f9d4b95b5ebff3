package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the onboarding state machine.
type Metrics struct {
	// Users created by init (replays are not counted)
	UsersInitialized prometheus.Counter

	// Step completions and failures by step
	StepsCompleted *prometheus.CounterVec
	StepFailures   *prometheus.CounterVec

	// Onboardings that reached the terminal step
	OnboardingsCompleted prometheus.Counter

	// Collaborator call latency by collaborator and outcome
	CollaboratorLatency *prometheus.HistogramVec

	// 1 when a collaborator breaker is open
	BreakerOpen *prometheus.GaugeVec
}

// New registers onboarding metrics with reg. A nil registerer uses the
// default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		UsersInitialized: f.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_users_initialized_total",
			Help: "Total onboarding aggregates created",
		}),
		StepsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_steps_completed_total",
			Help: "Total successful step submissions by step",
		}, []string{"step"}),
		StepFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_step_failures_total",
			Help: "Total failed step submissions by step and error code",
		}, []string{"step", "code"}),
		OnboardingsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_completed_total",
			Help: "Total users that finished onboarding",
		}),
		CollaboratorLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onboarding_collaborator_duration_seconds",
			Help:    "Duration of external collaborator calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"collaborator", "outcome"}), // outcome: "ok", "error", "short_circuit"
		BreakerOpen: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "onboarding_collaborator_breaker_open",
			Help: "Whether the collaborator circuit breaker is open (1) or closed (0)",
		}, []string{"collaborator"}),
	}
}

func (m *Metrics) IncUsersInitialized() {
	if m != nil {
		m.UsersInitialized.Inc()
	}
}

func (m *Metrics) IncStepCompleted(step string) {
	if m != nil {
		m.StepsCompleted.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) IncStepFailure(step, code string) {
	if m != nil {
		m.StepFailures.WithLabelValues(step, code).Inc()
	}
}

func (m *Metrics) IncOnboardingCompleted() {
	if m != nil {
		m.OnboardingsCompleted.Inc()
	}
}

// ObserveCollaborator records one collaborator call.
func (m *Metrics) ObserveCollaborator(name, outcome string, d time.Duration) {
	if m != nil {
		m.CollaboratorLatency.WithLabelValues(name, outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) SetBreakerOpen(name string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerOpen.WithLabelValues(name).Set(v)
}
