// Package delivery defines the outer surfaces the process serves.
package delivery

import "context"

// Delivery is a long-running surface started once the application is wired.
type Delivery interface {
	Serve(ctx context.Context) error
}
