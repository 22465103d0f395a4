// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata stamped into the spectra binary with
// -ldflags "-X spectra/pkg/build.buildName=...". The values feed the startup
// banner and the version subcommand.
package build

import (
	"errors"
	"fmt"
)

// Info describes one build of the binary.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// String renders the info as a single banner line.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Populated by the linker. Left empty in development builds.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var current = devInfo()

func devInfo() Info {
	return Info{
		Name:    "spectra",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
}

// Initialize copies the linker values into the current build info. It fails
// on the first missing value and leaves the development defaults in place.
func Initialize() error {
	switch {
	case buildName == "":
		return errors.New("BuildName is required")
	case buildTime == "":
		return errors.New("BuildTime is required")
	case buildCommit == "":
		return errors.New("BuildCommit is required")
	case buildVersion == "":
		return errors.New("BuildVersion is required")
	}

	current = Info{
		Name:    buildName,
		Time:    buildTime,
		Commit:  buildCommit,
		Version: buildVersion,
	}
	return nil
}

// Current returns the build info. Before a successful Initialize it holds
// the development defaults.
func Current() Info {
	return current
}
