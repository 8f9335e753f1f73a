package postgresql

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/loykin/apiscenario/internal/constants"
)

type Config struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString prefers an explicit DSN; otherwise it builds one from the
// components when a host is provided.
func (p Config) ConnString() (string, error) {
	if dsn := strings.TrimSpace(p.DSN); dsn != "" {
		return dsn, nil
	}
	host := strings.TrimSpace(p.Host)
	if host == "" {
		return "", fmt.Errorf("postgres store requires dsn or host")
	}
	port := p.Port
	if port == 0 {
		port = constants.DefaultPostgresPort
	}
	ssl := strings.TrimSpace(p.SSLMode)
	if ssl == "" {
		ssl = constants.DefaultPostgresSSLMode
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(strings.TrimSpace(p.User), strings.TrimSpace(p.Password)),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + strings.TrimSpace(p.DBName),
		RawQuery: "sslmode=" + url.QueryEscape(ssl),
	}
	return u.String(), nil
}
