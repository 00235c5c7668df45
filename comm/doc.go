// Package comm implements the simulated communication runtime: a tick-driven
// shared medium with a single-slot mailbox, priority event queues, composable
// security-layer stacks, channels, and the actor bootstrap.
package comm
