// ABOUTME: Error values returned by the item service
// ABOUTME: Surfaces map these to 400/403/404 with their own wording

package todo

import "errors"

var (
	// ErrNotFound is returned when no item has the requested ID.
	ErrNotFound = errors.New("item not found")

	// ErrForbidden is returned when the item exists but belongs to someone else.
	ErrForbidden = errors.New("item belongs to another user")

	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid item")
)

// ValidationError describes rejected caller input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid item: " + e.Reason
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
