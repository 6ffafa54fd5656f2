package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewPooledClient returns a client sharing one keep-alive pool with every other
// model client in the process. A zero timeout leaves deadlines to the caller's context.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
