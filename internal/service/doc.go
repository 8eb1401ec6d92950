// Package service contains the producing side of the pipeline: the
// application-facing operations that create task records and publish the
// corresponding work items to the broker.
package service
