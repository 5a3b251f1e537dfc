package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/crudkit/internal/constants"
	"github.com/fivetwenty-io/crudkit/pkg/crudclient"
	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
	"github.com/fivetwenty-io/crudkit/pkg/form"
	"github.com/fivetwenty-io/crudkit/pkg/formevents"
)

// Record is a backend record of any resource. Identifiers use the same shape.
type Record = map[string]interface{}

// RecordForm is the form driving record commands.
type RecordForm = form.Form[Record, Record]

func newLogger() crudkit.Logger {
	if !viper.GetBool("verbose") {
		return crudkit.NopLogger()
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.DebugLevel)

	return crudkit.NewLogrusLogger(logger)
}

// loadClientConfig builds the transport config from flags, environment and
// the config file.
func loadClientConfig() (*crudkit.Config, error) {
	apiEndpoint := viper.GetString("api")
	if apiEndpoint == "" {
		return nil, constants.ErrNoAPIConfigured
	}

	fileConfig, err := loadConfigFile()
	if err != nil {
		return nil, err
	}

	if expiresAt := fileConfig.TokenExpiresAt; expiresAt != nil && time.Now().After(*expiresAt) {
		fmt.Fprintf(os.Stderr, "Warning: stored token expired at %s, run 'crudkit login'\n", expiresAt.Format(time.RFC3339))
	}

	logger := newLogger()
	verbose := viper.GetBool("verbose")

	interceptors := crudkit.NewInterceptorChain().AddRequestInterceptor(crudkit.RequestIDInterceptor())
	if verbose {
		interceptors.AddRequestInterceptor(crudkit.LoggingInterceptor(logger))
		interceptors.AddResponseInterceptor(crudkit.LoggingResponseInterceptor(logger))
		interceptors.AddResponseInterceptor(crudkit.FailedEnvelopeInterceptor(logger))
	}

	config := &crudkit.Config{
		APIEndpoint:  apiEndpoint,
		AccessToken:  viper.GetString("token"),
		AuthScheme:   viper.GetString("auth_scheme"),
		RetryMax:     viper.GetInt("retry_max"),
		Headers:      fileConfig.Headers,
		Logger:       logger,
		Debug:        verbose,
		Interceptors: interceptors,
	}

	if timeout := viper.GetString("timeout"); timeout != "" {
		config.HTTPTimeout, err = time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
	}

	return config, nil
}

func newService(resource string, opts ...crudkit.ServiceOption) (*crudkit.HTTPService[Record, Record], error) {
	config, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	prefix := viper.GetString("prefix")
	if prefix == "" {
		prefix = constants.DefaultAPIPrefix
	}

	return crudclient.NewService[Record, Record](config, crudkit.EndpointsWithPrefix(prefix, resource), opts...)
}

func newTransport() (crudkit.Transport, error) {
	config, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	return crudclient.New(config)
}

// formSession is a record form with its event publisher.
type formSession struct {
	form     *RecordForm
	observer *formevents.NATSObserver
	outcome  error
}

// newFormSession creates a form for resource. Lifecycle events are published
// to NATS when events_url is configured. The caller must call Close.
func newFormSession(resource string, state form.State, id *crudkit.Identifier[Record], opts ...crudkit.ServiceOption) (*formSession, error) {
	service, err := newService(resource, opts...)
	if err != nil {
		return nil, err
	}

	f, err := form.New(form.Config[Record, Record]{
		Service:    service,
		State:      state,
		Identifier: id,
		NewRecord:  func() Record { return Record{} },
		Logger:     newLogger(),
	})
	if err != nil {
		return nil, err
	}

	session := &formSession{form: f, outcome: constants.ErrOperationUnfinished}

	if eventsURL := viper.GetString("events_url"); eventsURL != "" {
		observer, err := formevents.Connect(&formevents.NATSConfig{
			URL:    eventsURL,
			Name:   "crudkit-cli",
			Logger: newLogger(),
		}, resource)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to event bus: %w", err)
		}

		f.Observe(observer)
		session.observer = observer
	}

	hooks := f.Hooks()
	hooks.OnLoad = captureResult(session, hooks.OnLoad)
	hooks.OnResponse = captureResult(session, hooks.OnResponse)
	hooks.OnResponseAddWithBlobs = captureResult(session, hooks.OnResponseAddWithBlobs)
	hooks.OnResponseUpdateWithBlobs = captureResult(session, hooks.OnResponseUpdateWithBlobs)

	return session, nil
}

// captureResult records the outcome of a response in the session.
func captureResult[R any](s *formSession, h form.ResultHooks[R]) form.ResultHooks[R] {
	completed := h.Completed
	h.Completed = func(result crudkit.ResponseResult[crudkit.APIResponse[R]]) {
		s.outcome = resultError(result)

		if completed != nil {
			completed(result)
		}
	}

	return h
}

// Err returns the outcome of the last backend response, or
// ErrOperationUnfinished when no response arrived.
func (s *formSession) Err() error {
	return s.outcome
}

// Close releases the event publisher.
func (s *formSession) Close() {
	if s.observer != nil {
		_ = s.observer.Close()
	}
}

// resultError converts a non succeeded result into an error.
func resultError[R any](result crudkit.ResponseResult[crudkit.APIResponse[R]]) error {
	if result.HasException() {
		return result.Err
	}

	if !result.Response.Succeeded() {
		return envelopeError(result.Response.Message, result.Response.ErrorMessages)
	}

	return nil
}

func envelopeError(message string, errorMessages []string) error {
	if message == "" && len(errorMessages) > 0 {
		message = errorMessages[0]
	}

	if message == "" {
		return constants.ErrOperationFailed
	}

	for _, detail := range errorMessages {
		if detail != message {
			message += "; " + detail
		}
	}

	return fmt.Errorf("%w: %s", constants.ErrOperationFailed, message)
}
