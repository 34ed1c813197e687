// Package pages holds the view controllers of the client. Each controller
// owns the UI control state of one screen, reads documents from the shared
// collection cache and reacts to its events while mounted. Controllers are
// safe for concurrent use; the terminal front end renders their State.
package pages

import "errors"

// ErrCancelled is returned when the user declines a destructive action.
var ErrCancelled = errors.New("cancelled")

// Confirm asks the user to approve a destructive action.
type Confirm func(prompt string) bool

func confirmed(confirm Confirm, prompt string) bool {
	return confirm != nil && confirm(prompt)
}
