// Package provider implements translation backends.
package provider

import "github.com/ZaguanLabs/xraytl"

// Backend is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Backend = xraytl.Backend

// BatchRequest is an alias to the main package type.
type BatchRequest = xraytl.BatchRequest
