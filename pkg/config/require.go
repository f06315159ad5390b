package config

import (
	"fmt"
	"strings"
)

// Missing accumulates required env names that were left empty.
type Missing []string

func (m *Missing) NonEmpty(value, envName string) {
	if value == "" {
		*m = append(*m, envName)
	}
}

func (m *Missing) NonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		*m = append(*m, envName)
	}
}

func (m Missing) Err() error {
	if len(m) == 0 {
		return nil
	}
	return fmt.Errorf("missing required env %s", strings.Join(m, ", "))
}
