// Package version carries the build fingerprint of the coil CLI.
// Every variable can be overridden at build time via -ldflags.
package version

import "github.com/fatih/color"

var (
	major = color.New(color.FgYellow, color.Bold).Sprint("0")
	minor = color.New(color.FgGreen, color.Bold).Sprint("1")
	patch = color.New(color.FgBlue, color.Bold).Sprint("0")

	// Version is the semantic version of the CLI.
	Version = major + "." + minor + "." + patch + "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)
