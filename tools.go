//go:build tools
// +build tools

// Package tools tracks mockgen, run through go generate, as a module dependency.
package private_chat

import (
	_ "go.uber.org/mock/mockgen"
)
