package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// DownloadFilePerm is the permission for files written by downloads.
	DownloadFilePerm = 0640
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for uploads and downloads.
	ExtendedHTTPTimeout = 2 * time.Minute
)

// Retry limits. Retries are disabled unless a caller opts in.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// HTTP status codes commonly used.
const (
	// HTTPStatusBadRequest is the first status treated as an error.
	HTTPStatusBadRequest = 400
)

// HTTP headers and content types.
const (
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "X-Request-ID"

	ContentTypeJSON  = "application/json"
	ContentTypeOctet = "application/octet-stream"

	// AuthSchemeBearer is prefixed to tokens unless a raw scheme is configured.
	AuthSchemeBearer = "Bearer"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "crudkit/1.0"
)

// Multipart part names.
const (
	// JSONPartName is the part carrying serialized content next to file parts.
	JSONPartName = "content"
)

// Endpoint conventions.
const (
	// DefaultAPIPrefix is prepended to resource names by DefaultEndpoints.
	DefaultAPIPrefix = "/api"

	ActionGetOne          = "GetOne"
	ActionGetPaged        = "GetPaged"
	ActionAdd             = "Add"
	ActionUpdate          = "Update"
	ActionDelete          = "Delete"
	ActionAddWithBlobs    = "AddWithBlobs"
	ActionUpdateWithBlobs = "UpdateWithBlobs"
)

// Pagination limits.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 25

	// DefaultMaxPages bounds FetchAllPages when no limit is given.
	DefaultMaxPages = 100
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// CLI configuration.
const (
	// ConfigDirName is the configuration directory below the user's home.
	ConfigDirName = ".crudkit"

	// ConfigFileName is the configuration file inside ConfigDirName.
	ConfigFileName = "config.yml"

	// EnvPrefix prefixes environment overrides, e.g. CRUDKIT_API.
	EnvPrefix = "CRUDKIT"

	// MinimumArgumentCount is the argument count of KEY VALUE commands.
	MinimumArgumentCount = 2
)

// Download formats.
const (
	DownloadFormatBytes        = "bytes"
	DownloadFormatBase64       = "base64"
	DownloadFormatDecodeBase64 = "decode-base64"
	DownloadFormatStream       = "stream"
)
