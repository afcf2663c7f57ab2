package metrics

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EmptyLLMResponse        = expvar.NewInt("empty_llm_response_count")
	SuccessfulLLMGen        = expvar.NewInt("successful_llm_gen_count")
	FailedLLMGen            = expvar.NewInt("failed_llm_gen_count")
	DiscordMessageRecieved  = expvar.NewInt("discord_message_recieved")
	DiscordMessageSent      = expvar.NewInt("discord_message_sent")
	DiscordMessageSendError = expvar.NewInt("discord_message_send_error")

	InterviewCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_command_total",
			Help: "Total number of interview commands handled by command type",
		},
		[]string{"command"},
	)

	InterviewCommandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_command_errors",
			Help: "Total number of interview commands that hit an upstream or transport error",
		},
		[]string{"command"},
	)

	InterviewCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interview_command_duration_seconds",
			Help:    "Duration of interview command handling in seconds, including the LLM call",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"command"},
	)

	InterviewSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sessions_total",
			Help: "Practice sessions by status (started, completed)",
		},
		[]string{"status"},
	)

	DependencyUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "interview_dependency_up",
			Help: "1 when the last health check of a backing service passed, 0 otherwise",
		},
		[]string{"dependency"},
	)

	UserQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "interview_user_queues",
			Help: "Number of per-user work queues currently alive",
		},
	)
)

// Server exposes /metrics, /debug/vars and /healthz.
type Server struct {
	*http.Server
	mux *http.ServeMux
}

// SetupServer builds the metrics server listening on addr.
func SetupServer(addr string) *Server {
	if addr == "" {
		addr = ":6060"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewExpvarCollector(
			map[string]*prometheus.Desc{
				"empty_llm_response_count":   prometheus.NewDesc("empty_llm_response_count", "number of times llm responded with an empty string", nil, nil),
				"successful_llm_gen_count":   prometheus.NewDesc("successful_llm_gen_count", "number of times llm generated a valid response", nil, nil),
				"failed_llm_gen_count":       prometheus.NewDesc("failed_llm_gen_count", "number of times errors occured in llm generation", nil, nil),
				"discord_message_recieved":   prometheus.NewDesc("discord_message_recieved", "number of discord messages and interactions received", nil, nil),
				"discord_message_sent":       prometheus.NewDesc("discord_message_sent", "number of discord messages sent", nil, nil),
				"discord_message_send_error": prometheus.NewDesc("discord_message_send_error", "number of failed discord sends", nil, nil),
			},
		),
		InterviewCommandTotal,
		InterviewCommandErrors,
		InterviewCommandDuration,
		InterviewSessions,
		UserQueueDepth,
		DependencyUp,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/healthz", healthzHandler)

	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		mux: mux,
	}
}

// Handle registers an extra endpoint. Call it before Run.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// healthzHandler returns a simple health check response
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	err := s.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ObserveCommand counts a command and returns a func that records its duration.
func ObserveCommand(command string) func() {
	start := time.Now()
	InterviewCommandTotal.WithLabelValues(command).Inc()
	return func() {
		InterviewCommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	}
}
