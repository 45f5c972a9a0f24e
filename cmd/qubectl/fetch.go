package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/xDarkicex/qubed/internal/logging"
	"github.com/xDarkicex/qubed/internal/obs"
	"github.com/xDarkicex/qubed/qube"
)

// newFetchCmd implements the remote counterpart of serialisation.py's
// from_api: GET a qube tree from an HTTP endpoint, with retry/backoff. The
// whole retry sequence runs as a single call through a circuit breaker
// created for this invocation, so the breaker sees at most one failure.
func newFetchCmd() *cobra.Command {
	var out string
	var params []string
	var retries int

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "fetch a qube tree from a remote HTTP endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, err := buildURL(args[0], params)
			if err != nil {
				return err
			}

			timeout := time.Duration(cfg.FetchTimeoutS) * time.Second
			if retries <= 0 {
				retries = cfg.FetchRetries
			}

			breaker := obs.NewCircuitBreaker(obs.DefaultCircuitBreakerConfig("qubectl-fetch"))

			var payload []byte
			err = breaker.Execute(cmd.Context(), func() error {
				return backoff.Retry(func() error {
					data, fetchErr := fetchOnce(cmd.Context(), endpoint, timeout)
					if fetchErr != nil {
						logging.Sugar().Warnw("fetch attempt failed", "url", endpoint, "err", fetchErr)
						return fetchErr
					}
					payload = data
					return nil
				}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)))
			})
			if err != nil {
				return fmt.Errorf("fetch %s: %w", endpoint, err)
			}

			q, err := qube.FromJSONQube(payload)
			if err != nil {
				return err
			}
			return writeQube(q, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path (\"-\" for stdout)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "key=value query parameter, may be repeated")
	cmd.Flags().IntVar(&retries, "retries", 0, "override the configured retry count")
	return cmd
}

func buildURL(raw string, params []string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for _, p := range params {
		eq := indexByte(p, '=')
		if eq < 0 {
			return "", newCLIError("invalid --param %q: expected key=value", p)
		}
		q.Set(p[:eq], p[eq+1:])
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func fetchOnce(ctx context.Context, endpoint string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("server error: %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		return nil, backoff.Permanent(fmt.Errorf("client error: %s", resp.Status))
	}
	return io.ReadAll(resp.Body)
}
