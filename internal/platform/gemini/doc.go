// Package gemini implements the processing.Processor interface using
// Google's Gemini API.
package gemini
