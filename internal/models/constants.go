// Package models contains data types and constants for monachat.
package models

// Reply service endpoint
const (
	DefaultBackendURL = "https://noisy-haze-453b.crinkle-crease-official.workers.dev"
	EndpointMessage   = "/api/message"
)

// ImagePlaceholderText is sent to the reply service in place of the user's
// text when a message only carries an image
const ImagePlaceholderText = "[image]"

// Fallback replies used when the reply service cannot produce one
const (
	FallbackServerError = "Sorry, something went wrong on the server."
	FallbackUnreachable = "I couldn’t reach the server, but I’m still here."
	FallbackEmptyReply  = "I’m here, talk to you."
)

// Delivery status labels shown under user messages
const (
	LabelSent      = "✓ Sent"
	LabelDelivered = "✓✓ Delivered"
	LabelRead      = "✓✓ Read"
)

// DefaultHeaders returns the headers sent with every reply request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	}
}
