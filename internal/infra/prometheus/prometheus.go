package prometheus

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sifan077/blt/config"
)

const (
	defaultPort = 9090
	defaultPath = "/metrics"

	scrapeTimeout      = 10 * time.Second
	maxScrapesInFlight = 4
	serverReadTimeout  = 5 * time.Second
	serverWriteTimeout = scrapeTimeout + time.Second
	serverIdleTimeout  = 60 * time.Second
)

// Handler serves every metric in g. Scrapers that ask for OpenMetrics get it;
// a collector failure drops that collector instead of the whole scrape.
func Handler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorHandling:       promhttp.ContinueOnError,
		MaxRequestsInFlight: maxScrapesInFlight,
		Timeout:             scrapeTimeout,
		EnableOpenMetrics:   true,
	})
}

// NewServer builds the scrape endpoint for the default registry, which holds
// the blt_* collectors together with the Go and process collectors.
func NewServer(cfg config.PrometheusConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(metricsPath(cfg), Handler(prom.DefaultGatherer))

	return &http.Server{
		Addr:              Addr(cfg),
		Handler:           mux,
		ReadHeaderTimeout: serverReadTimeout,
		WriteTimeout:      serverWriteTimeout,
		IdleTimeout:       serverIdleTimeout,
	}
}

// Addr is the listen address for cfg, on all interfaces.
func Addr(cfg config.PrometheusConfig) string {
	port := cfg.Port
	if port <= 0 {
		port = defaultPort
	}
	return net.JoinHostPort("", strconv.Itoa(port))
}

func metricsPath(cfg config.PrometheusConfig) string {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
