// Package crudclient provides the main entry point for creating crudkit transports
package crudclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/crudkit/internal/auth"
	"github.com/fivetwenty-io/crudkit/internal/constants"
	internalhttp "github.com/fivetwenty-io/crudkit/internal/http"
	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

// New creates a Transport for config.
func New(config *crudkit.Config) (crudkit.Transport, error) {
	if config == nil {
		return nil, crudkit.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, crudkit.ErrAPIEndpointRequired
	}

	// Normalize API endpoint
	apiEndpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	opts, err := clientOptions(config)
	if err != nil {
		return nil, err
	}

	var tokenManager auth.TokenManager
	if config.AccessToken != "" {
		tokenManager = auth.NewStaticTokenManager(config.AccessToken, time.Time{})
	}

	return internalhttp.NewClient(apiEndpoint, tokenManager, opts...), nil
}

// NewWithEndpoint creates a transport with just an API endpoint (no auth).
func NewWithEndpoint(endpoint string) (crudkit.Transport, error) {
	return New(&crudkit.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithToken creates a transport with an API endpoint and bearer token.
func NewWithToken(endpoint, token string) (crudkit.Transport, error) {
	return New(&crudkit.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewService creates a transport for config and binds a typed service for
// endpoints to it.
func NewService[T, TID any](config *crudkit.Config, endpoints crudkit.Endpoints, opts ...crudkit.ServiceOption) (*crudkit.HTTPService[T, TID], error) {
	transport, err := New(config)
	if err != nil {
		return nil, err
	}

	return crudkit.NewHTTPService[T, TID](transport, endpoints, opts...)
}

// clientOptions builds HTTP client options from config.
func clientOptions(config *crudkit.Config) ([]internalhttp.Option, error) {
	var opts []internalhttp.Option

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, internalhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	switch {
	case config.RawToken:
		opts = append(opts, internalhttp.WithAuthScheme(""))
	case config.AuthScheme != "":
		opts = append(opts, internalhttp.WithAuthScheme(config.AuthScheme))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		opts = append(opts, internalhttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if len(config.Headers) > 0 {
		opts = append(opts, internalhttp.WithHeaders(config.Headers))
	}

	if config.Interceptors != nil {
		opts = append(opts, internalhttp.WithInterceptors(config.Interceptors))
	}

	if config.SkipTLSVerify {
		httpClient, err := insecureHTTPClient()
		if err != nil {
			return nil, err
		}

		opts = append(opts, internalhttp.WithHTTPClient(httpClient))
	}

	// Timeout last so it applies to a replaced HTTP client too.
	if config.HTTPTimeout > 0 {
		opts = append(opts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	return opts, nil
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("CRUDKIT_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

func insecureHTTPClient() (*http.Client, error) {
	// Only allow insecure TLS in explicit development environments
	if !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set CRUDKIT_DEV_MODE=true)", crudkit.ErrSkipTLSOnlyInDev)
	}

	return &http.Client{
		Timeout: constants.DefaultHTTPTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- Protected by development environment check above
		},
	}, nil
}
