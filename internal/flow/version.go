// Package flow implements the project → flow → node tree model: seeding,
// navigation paths, cascading deletes, node styling, connection bookkeeping
// and semantic version counters. Functions here are pure; persistence and
// selection state live in the service package.
package flow

import (
	"fmt"
	"strconv"
	"strings"
)

// Level selects which component of a version Bump increments.
type Level int

const (
	// Patch bumps the last component.
	Patch Level = iota
	// Minor bumps the middle component and resets patch.
	Minor
	// Major bumps the first component and resets the others.
	Major
)

// InitialVersion is the version of a freshly created project or first document save.
const InitialVersion = "1.0.0"

// Bump increments version at the given level. Missing or non-numeric
// components count as zero, so Bump never fails.
func Bump(version string, level Level) string {
	major, minor, patch := parseVersion(version)
	switch level {
	case Major:
		return fmt.Sprintf("%d.0.0", major+1)
	case Minor:
		return fmt.Sprintf("%d.%d.0", major, minor+1)
	default:
		return fmt.Sprintf("%d.%d.%d", major, minor, patch+1)
	}
}

func parseVersion(version string) (major, minor, patch int) {
	parts := strings.SplitN(strings.TrimSpace(version), ".", 3)
	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			n = 0
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2]
}
