// Package task contains the consuming side of the pipeline: the handler
// that drives a task through its lifecycle state machine in response to
// broker deliveries.
//
// States move along pending -> processing -> {completed, failed}. The
// processing write is idempotent so redeliveries re-enter it safely. A
// failed AI call is a terminal business outcome and acknowledges the
// message; only transport faults (an unavailable store) leave a delivery
// unacknowledged for the broker to retry.
package task
