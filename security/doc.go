// Package security holds TLS settings for outbound connections.
//
//	cfg := security.TLSConfig{
//	    CAFile:     "/etc/articles/ca.pem",
//	    MinVersion: "1.3",
//	}
//	tlsConfig, err := cfg.Build() // nil when nothing is set
package security
