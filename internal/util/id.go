// Package util holds small helpers shared across packages.
package util

import "github.com/google/uuid"

// NewID returns a random identifier, prefixed with "<prefix>-" when prefix is set.
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
