// Package notify implements the outbound notification boundary.
//
// The engine and the lifecycle scheduler hand events to a Dispatcher, which
// queues them and delivers through a Sender on a background goroutine.
// Dispatching never blocks the caller and delivery failures are logged,
// never propagated: a failed email must not roll back the bid that
// triggered it.
//
// The Sender is the seam to the real notification collaborator (email,
// push); LogSender is the built-in stand-in.
package notify
