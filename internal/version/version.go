// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// String returns a human-readable version line.
func (i Info) String() string {
	return fmt.Sprintf("campusmap %s (commit %s, built %s)", i.Version, i.GitCommit, i.BuildTime)
}

// New creates an Info, substituting placeholders for empty values.
func New(version, gitCommit, buildTime string) Info {
	if version == "" {
		version = "dev"
	}
	if gitCommit == "" {
		gitCommit = "unknown"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}
	return Info{Version: version, GitCommit: gitCommit, BuildTime: buildTime}
}
