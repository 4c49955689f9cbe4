package repository

import (
	"fmt"
	"strings"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Open returns the store named by driver. dataDir is only used by sqlite.
func Open(driver, dataDir string, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		if dataDir == "" {
			dataDir = MemoryDSN
		}
		s, err := OpenSQLite(dataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
