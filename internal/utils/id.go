package utils

import "github.com/google/uuid"

// NewID returns a random unique identifier for requests and connections.
func NewID() string {
	return uuid.NewString()
}
