// Package store defines the persistence interfaces consumed by the task
// pipeline, plus the common error types shared by all implementations.
// Concrete backends live under internal/platform.
package store
