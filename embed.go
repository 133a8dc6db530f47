// Package sitecheck exposes assets embedded at the repository root.
package sitecheck

import "embed"

// Migrations holds the goose SQL migrations applied by the migrate command
// and by storage tests.
//
//go:embed migrations/*.sql
var Migrations embed.FS
