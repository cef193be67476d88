package utils

import "github.com/google/uuid"

// GenerateID mints an identifier for stored files and sessions.
func GenerateID() string {
	return uuid.NewString()
}
