package repository

import "context"

// INotifier delivers a best-effort, fire-and-forget user-visible message.
// Implementations log delivery failures themselves; callers never branch on
// whether a notification actually landed.
type INotifier interface {
	Notify(ctx context.Context, message string)
}
