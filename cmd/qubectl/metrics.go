package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xDarkicex/qubed/internal/logging"
	"github.com/xDarkicex/qubed/internal/obs"
)

// metrics is constructed once at process start, mirroring the teacher's
// single-construction-site pattern in its database constructor. Every
// qube operation subcommand reports through it regardless of whether
// --metrics-addr is set; the flag only controls whether anything scrapes
// it before the process exits.
var metrics = obs.NewMetrics()

// metricsKindFor maps a command name (as used in its Use string) to the
// kind strings obs.Metrics.Observe switches on.
func metricsKindFor(name string) string {
	switch name {
	case "symmetric-difference":
		return "symmetric_difference"
	default:
		return name
	}
}

// maybeServeMetrics starts a /metrics endpoint in the background when
// addr is non-empty. A qubectl invocation is normally a one-shot
// command, so this only matters for long-running uses (piped through
// "select --watch" style wrappers, or invoked from a daemonized script).
func maybeServeMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logging.Sugar().Warnw("metrics server stopped", "addr", addr, "err", err)
		}
	}()
}
