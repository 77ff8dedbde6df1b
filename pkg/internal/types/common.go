package types

// ComponentMetadata identifies a component in log lines and metrics.
type ComponentMetadata struct {
	ID   string // Unique identifier for the component.
	Type string // Component class, e.g. "TRANSMITTER" or "RECEIVER".
	Name string // Human-readable name for the component.
}

// TLSConfig holds the certificate material used by network listeners.
type TLSConfig struct {
	UseTLS        bool
	CertFile      string
	KeyFile       string
	CAFile        string
	MinTLSVersion uint16 // e.g., tls.VersionTLS12
	MaxTLSVersion uint16 // e.g., tls.VersionTLS13
}

// Option defines a configuration option function applicable to any component T.
type Option[T any] func(T)
