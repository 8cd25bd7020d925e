package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateToken returns an opaque URL-safe token for email links.
func GenerateToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
