// Package queue defines the broker-agnostic publish/subscribe contract
// used by the task pipeline, together with the WorkItem wire format.
// Concrete backends (RabbitMQ, Azure Service Bus) live in subpackages and
// are interchangeable behind the Client interface.
package queue
