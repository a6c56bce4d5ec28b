package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateShortID returns a legacy-style prefixed code (M/MS/PAY/...):
// the prefix plus six uppercase hex characters.
func GenerateShortID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:6])
}
