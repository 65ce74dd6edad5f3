//go:build tools

// Package tools pins build-time tools in go.mod. Regenerate the query layer with
// `go run github.com/sqlc-dev/sqlc/cmd/sqlc generate`.
package tools

import (
	_ "github.com/sqlc-dev/sqlc/cmd/sqlc"
)
