package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/foliolab/foliage-platform/pkg/mqtt"
	"github.com/foliolab/foliage-platform/pkg/postgres"
	"github.com/foliolab/foliage-platform/pkg/redis"
)

// probeTimeout bounds the dependency pings in the detailed check.
// An orchestrator polling a wedged dependency should get its 503
// quickly, not hang alongside it.
const probeTimeout = 2 * time.Second

// Checker serves liveness and dependency probes for the agent.
type Checker struct {
	mqtt     mqtt.Client
	redis    redis.Client
	postgres postgres.Client
	logger   *slog.Logger
}

// NewChecker creates a new health checker with the given dependencies.
// The postgres client may be nil for agents running on a file dataset.
func NewChecker(mqttClient mqtt.Client, redisClient redis.Client, pgClient postgres.Client, logger *slog.Logger) *Checker {
	return &Checker{
		mqtt:     mqttClient,
		redis:    redisClient,
		postgres: pgClient,
		logger:   logger,
	}
}

// HealthResponse is the JSON body of both endpoints. Database is
// only present on the detailed endpoint and only when the agent has
// a Postgres client.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Services  *Services              `json:"services,omitempty"`
	Database  *postgres.HealthStatus `json:"database,omitempty"`
}

// Services reports each dependency as connected or disconnected.
type Services struct {
	Redis    string `json:"redis"`
	MQTT     string `json:"mqtt"`
	Postgres string `json:"postgres,omitempty"`
}

// HandlerFunc returns an HTTP handler function for health checks.
// Returns 200 if the process is alive without checking dependencies,
// which keeps the probe fast for orchestrators.
func (h *Checker) HandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode health response", "error", err)
		}
	}
}

// DetailedHandlerFunc returns a handler that probes every dependency.
// MQTT reports the session flag the paho client maintains; Redis and
// Postgres get a real round trip bounded by probeTimeout. Any
// disconnected dependency degrades the response to 503.
func (h *Checker) DetailedHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		services := &Services{}

		if h.mqtt != nil && h.mqtt.IsConnected() {
			services.MQTT = "connected"
		} else {
			services.MQTT = "disconnected"
		}

		if h.redis != nil && h.redis.Ping(ctx) == nil {
			services.Redis = "connected"
		} else {
			services.Redis = "disconnected"
		}

		var dbStatus *postgres.HealthStatus
		if h.postgres != nil {
			status, err := h.postgres.HealthCheck(ctx)
			if err == nil && status != nil && status.Connected {
				services.Postgres = "connected"
			} else {
				services.Postgres = "disconnected"
			}
			dbStatus = status
		}

		status := "healthy"
		statusCode := http.StatusOK

		if services.Redis == "disconnected" || services.MQTT == "disconnected" || services.Postgres == "disconnected" {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Services:  services,
			Database:  dbStatus,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode health response", "error", err)
		}
	}
}
