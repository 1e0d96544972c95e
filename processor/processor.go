// Package processor provides content processing implementations.
package processor

import "github.com/ZaguanLabs/xraytl"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = xraytl.ContentProcessor

// TextEntity is an alias to the main package type.
type TextEntity = xraytl.TextEntity
