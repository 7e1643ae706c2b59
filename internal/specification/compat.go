package specification

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckRequires verifies that version satisfies the specification's
// requires constraint. Development builds and empty constraints always pass.
func CheckRequires(requires, version string) error {
	if strings.TrimSpace(requires) == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(requires)
	if err != nil {
		return fmt.Errorf("parsing requires constraint %q: %w", requires, err)
	}

	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		// Non-semver builds such as "dev" are not checked.
		return nil
	}

	if !constraint.Check(v) {
		return &VersionError{Requires: requires, Version: version}
	}
	return nil
}
