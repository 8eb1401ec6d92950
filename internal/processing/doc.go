// Package processing provides the interface and error taxonomy for
// interacting with external AI/LLM services. It abstracts the details of
// the provider integration (Gemini), allowing the task pipeline to process
// user text without coupling to a specific external service.
package processing
