package taotrace

import (
	"net/url"
	"strings"
)

// WebSocketURL is a validated ws:// or wss:// URL, the only transport the
// chain client's subscription interface accepts.
type WebSocketURL struct {
	raw string
}

// ParseWebSocketURL validates input as a ws:// or wss:// URL.
func ParseWebSocketURL(input string) (WebSocketURL, error) {
	parsed, err := url.Parse(input)
	if err != nil {
		return WebSocketURL{}, &ConfigError{Field: "websocket_url", Reason: "invalid URL: " + err.Error()}
	}
	switch parsed.Scheme {
	case "ws", "wss":
		return WebSocketURL{raw: input}, nil
	default:
		return WebSocketURL{}, &ConfigError{Field: "websocket_url", Reason: "must start with ws:// or wss://"}
	}
}

// String returns the underlying URL.
func (u WebSocketURL) String() string {
	return u.raw
}

// StorageBackend identifies which CheckpointStore constructor a
// validated storage URL selects.
type StorageBackend int

const (
	// StorageBackendFile selects checkpoint.NewFile.
	StorageBackendFile StorageBackend = iota
	// StorageBackendSQLite selects checkpoint.OpenSQLite.
	StorageBackendSQLite
	// StorageBackendPostgres selects a caller-supplied *sql.DB wrapped by
	// checkpoint.New with checkpoint.DialectDollar.
	StorageBackendPostgres
)

// StorageURL is a validated storage backend selector, parsed from one of
// three schemes: a bare filesystem path (flat-file JSON), "sqlite://path",
// or "postgres://..." / "postgresql://...".
type StorageURL struct {
	backend StorageBackend
	path    string
}

// ParseStorageURL validates input against the three supported storage
// backend shapes.
func ParseStorageURL(input string) (StorageURL, error) {
	switch {
	case strings.HasPrefix(input, "sqlite://"):
		return StorageURL{backend: StorageBackendSQLite, path: strings.TrimPrefix(input, "sqlite://")}, nil
	case strings.HasPrefix(input, "postgres://"), strings.HasPrefix(input, "postgresql://"):
		return StorageURL{backend: StorageBackendPostgres, path: input}, nil
	case input == "":
		return StorageURL{}, &ConfigError{Field: "storage_backend", Reason: "must not be empty"}
	default:
		return StorageURL{backend: StorageBackendFile, path: input}, nil
	}
}

// Backend reports which CheckpointStore implementation this URL selects.
func (u StorageURL) Backend() StorageBackend {
	return u.backend
}

// Path returns the backend-specific payload: a filesystem path for
// StorageBackendFile and StorageBackendSQLite, or the full connection
// string for StorageBackendPostgres.
func (u StorageURL) Path() string {
	return u.path
}
