package domain

// Notifier pushes an operational event. Implementations dispatch
// asynchronously and never block or fail the caller.
type Notifier interface {
	Push(n Notification)
}
