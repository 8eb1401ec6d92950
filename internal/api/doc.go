// Package api implements the HTTP handlers for the task endpoints. It is
// a thin layer over the service boundary; none of the pipeline logic
// lives here.
package api
