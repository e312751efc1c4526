package errors

import (
	"math"
	"regexp"
)

// MaxViewportSize bounds the viewport dimensions a shell may report.
// Larger values are almost always unit mistakes (device pixels times zoom).
const MaxViewportSize = 100_000

// nodeIDRegex matches identifiers produced by the node counter: node_1, node_2, ...
var nodeIDRegex = regexp.MustCompile(`^node_[1-9][0-9]*$`)

// ValidateNodeID validates a node identifier typed or sent by a shell.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid node id: %q", id)
	}
	return nil
}

// ValidatePosition rejects coordinates that are NaN or infinite.
func ValidatePosition(x, y float64) error {
	if !finite(x) || !finite(y) {
		return New(ErrCodeInvalidInput, "position must be finite, got (%v, %v)", x, y)
	}
	return nil
}

// ValidateViewport validates the viewport size reported by the UI shell.
//
// Validation rules:
//   - Both dimensions must be finite
//   - Both dimensions must be strictly positive
//   - Neither dimension may exceed MaxViewportSize
func ValidateViewport(width, height float64) error {
	if !finite(width) || !finite(height) {
		return New(ErrCodeInvalidInput, "viewport must be finite, got %vx%v", width, height)
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "viewport must be positive, got %vx%v", width, height)
	}
	if width > MaxViewportSize || height > MaxViewportSize {
		return New(ErrCodeInvalidInput, "viewport too large (max %d)", MaxViewportSize)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
