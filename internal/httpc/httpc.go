package httpc

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Httpc holds the client settings shared by every request of a run.
type Httpc struct {
	TlsConfig *tls.Config
	BaseURL   string
	Timeout   time.Duration
}

// New returns a resty.Client configured according to the receiver's settings.
// Defaults: MinVersion TLS1.2 when a TLS config is given with MinVersion zero.
func (h *Httpc) New() *resty.Client {
	c := resty.New()
	if h.BaseURL != "" {
		c.SetBaseURL(strings.TrimRight(h.BaseURL, "/"))
	}
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	}
	cfg := h.TlsConfig
	if cfg == nil {
		return c
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}
	c.SetTLSClientConfig(cfg)
	return c
}

// ParseTLSVersion converts a TLS version string to the corresponding crypto/tls constant.
// Supports various formats: "1.0", "10", "tls1.0", "tls10", etc.
// Returns 0 if the version string is not recognized.
func ParseTLSVersion(version string) uint16 {
	switch strings.TrimSpace(strings.ToLower(version)) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}

// TLSConfig builds a client TLS config from the client section of the config
// file. It returns nil when nothing is constrained so resty keeps its defaults.
func TLSConfig(insecure bool, minVersion, maxVersion string) *tls.Config {
	minV := ParseTLSVersion(minVersion)
	maxV := ParseTLSVersion(maxVersion)
	if !insecure && minV == 0 && maxV == 0 {
		return nil
	}
	// #nosec G402 -- versions come from explicit configuration
	cfg := &tls.Config{MinVersion: minV, MaxVersion: maxV}
	if insecure {
		// #nosec G402 -- self-signed test servers, only when explicitly configured
		cfg.InsecureSkipVerify = true
	}
	return cfg
}
