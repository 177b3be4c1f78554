// Command healthcheck exits 0 when the predicTCR backend at PREDICTCR_API_URL
// answers a settings request, and 1 otherwise.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/predictcr/internal/adapter/driven/api"
	"github.com/ericfisherdev/predictcr/internal/config"
)

const timeout = 5 * time.Second

func main() {
	os.Exit(check(os.Stderr))
}

func check(stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return checkBackend(cfg.APIURL, &http.Transport{ResponseHeaderTimeout: timeout}, logger, stderr)
}

// checkBackend fetches the public settings record without credentials.
func checkBackend(baseURL string, transport http.RoundTripper, logger *slog.Logger, stderr io.Writer) int {
	client, err := api.NewClientWithTransport(baseURL, nil, transport, api.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := client.FetchSettings(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
