package crudkit

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Request describes a single call to the backend. Body is JSON encoded unless
// RawBody is set, in which case RawBody is sent as is with ContentType.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Headers     map[string]string
	Body        interface{}
	RawBody     []byte
	ContentType string
	Metadata    map[string]interface{}
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// StreamResponse is a backend response whose body has not been read. The
// caller must close Body.
type StreamResponse struct {
	StatusCode int
	Headers    http.Header
	Body       io.ReadCloser
}

// Transport performs one round trip per call.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Stream(ctx context.Context, req *Request) (*StreamResponse, error)
}

// Config represents client configuration for building a Transport.
//
// # Authentication
//
// AccessToken, if set, is sent on every request in the Authorization header
// as "<AuthScheme> <token>". AuthScheme defaults to "Bearer"; set RawToken to
// send the token without a scheme.
//
// # Timeouts and retries
//
// Per-request deadlines should be set on the context passed to each call.
// Retries are disabled unless RetryMax is greater than zero.
type Config struct {
	// APIEndpoint: base URL of the backend (e.g., "https://api.example.com").
	APIEndpoint string
	// AccessToken: optional token for the Authorization header.
	AccessToken string
	// AuthScheme: scheme prefixed to AccessToken. Empty means "Bearer".
	AuthScheme string
	// RawToken: send AccessToken without any scheme.
	RawToken bool
	// HTTPTimeout: overall timeout of a single attempt.
	HTTPTimeout time.Duration
	// RetryMax: retries for transient failures (>=500, 429, connection errors).
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug: log every request and response through Logger.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Headers: sent on every request.
	Headers map[string]string
	// Interceptors: optional request/response hooks run around every call.
	Interceptors *InterceptorChain
	// SkipTLSVerify: disable certificate checks. Only honored when
	// CRUDKIT_DEV_MODE is set.
	SkipTLSVerify bool
}
