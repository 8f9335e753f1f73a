package basic

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// Config holds configuration for Basic authentication.
type Config struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Method yields "Basic <base64(username:password)>".
type Method struct{ C Config }

func (m Method) Acquire(_ context.Context) (string, error) {
	u := strings.TrimSpace(m.C.Username)
	p := strings.TrimSpace(m.C.Password)
	if u == "" || p == "" {
		return "", errors.New("basic: username and password are required")
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(u+":"+p)), nil
}
