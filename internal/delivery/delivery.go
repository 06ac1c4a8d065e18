// Package delivery defines the contract every serving process implements,
// whatever its transport.
package delivery

import "context"

// Delivery is a long-running serving loop started by the application
// container. Serve blocks until the loop stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
