package database

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xo/dburl"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Driver)
)

// Register makes a driver available under the given connection-string
// scheme. Backend packages call it from init, so a blank import is
// enough to enable a backend.
func Register(scheme string, driver Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if driver == nil {
		panic("database: Register driver is nil")
	}

	if _, dup := registry[scheme]; dup {
		panic(fmt.Sprintf("database: Register called twice for scheme [%s]", scheme))
	}

	registry[scheme] = driver
}

// Schemes lists every registered scheme in sorted order.
func Schemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]string, 0, len(registry))
	for scheme := range registry {
		result = append(result, scheme)
	}
	sort.Strings(result)

	return result
}

// ResolutionError means no registered driver matched the connection
// string scheme. It enumerates what is registered so the message is
// actionable.
type ResolutionError struct {
	Scheme    string
	Available []string
}

func (e *ResolutionError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no database driver found for scheme [%s://], no drivers are registered at all", e.Scheme)
	}

	return fmt.Sprintf(
		"no database driver found for scheme [%s://], available drivers: %s",
		e.Scheme, strings.Join(e.Available, ", "),
	)
}

// Resolve selects a registered driver by the scheme prefix of the
// given connection string. Scheme aliases that dburl understands, e.g.
// postgresql for postgres, resolve to the same driver.
func Resolve(dsn string) (Driver, error) {
	idx := strings.Index(dsn, "://")
	if idx < 0 {
		return nil, errors.Errorf("database url [%s] has no scheme", safeDSN(dsn))
	}
	scheme := dsn[:idx]

	registryMu.RLock()
	driver, ok := registry[scheme]
	registryMu.RUnlock()
	if ok {
		return driver, nil
	}

	// fall back to dburl alias normalization
	if u, err := dburl.Parse(dsn); err == nil {
		registryMu.RLock()
		driver, ok = registry[u.Driver]
		registryMu.RUnlock()
		if ok {
			return driver, nil
		}
	}

	return nil, &ResolutionError{Scheme: scheme, Available: Schemes()}
}

// safeDSN strips everything after the scheme so credentials never end
// up in error messages.
func safeDSN(dsn string) string {
	if idx := strings.Index(dsn, "://"); idx >= 0 {
		return dsn[:idx] + "://"
	}

	return dsn
}
