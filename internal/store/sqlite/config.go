package sqlite

import (
	"fmt"
	"strings"

	"github.com/loykin/apiscenario/internal/constants"
)

// SQLite configuration constants
const (
	busyTimeoutMS    = 5000 // 5 seconds in milliseconds
	foreignKeysParam = "_fk=1"
)

type Config struct {
	Path string `mapstructure:"path"`
}

// DSN returns the modernc DSN for Path, defaulting the file name.
func (c Config) DSN() string {
	path := strings.TrimSpace(c.Path)
	if path == "" {
		path = constants.DefaultSQLitePath
	}
	if path == ":memory:" {
		return path
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d&%s", path, busyTimeoutMS, foreignKeysParam)
}
