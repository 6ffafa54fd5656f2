package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/metrics"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var (
	settingsMu sync.RWMutex
	settings   = config.ServerConfig{}
)

// Init sets the auth token and whether the per-ip rate limiter runs.
func Init(cfg config.ServerConfig) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = cfg
	limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)

	log := logger_i.NewLogger("middleware")
	if cfg.NoAuthBypass {
		log.Warn("Authentication is disabled")
	} else if cfg.AuthToken == "" {
		log.Warn("No auth token configured, every request will be rejected")
	}
}

func currentSettings() config.ServerConfig {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(routePattern(re.req), strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if !handleBadRequest(re) {
		return re
	}
	re.logger.Info("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	cfg := currentSettings()
	re = authenticate(re, cfg)
	if !handleBadRequest(re) {
		return re //stop if auth fails
	}
	if cfg.RateLimit {
		re = rateLimiter(re)
		if !handleBadRequest(re) {
			return re //stop here if rate limit fails
		}
	}
	return re
}

// routePattern keeps metric labels bounded to the registered routes.
func routePattern(r *http.Request) string {
	if r == nil {
		return "unknown"
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
