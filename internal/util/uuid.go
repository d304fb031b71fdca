package util

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// ShortUUID generates a compact 22-symbol identifier for rendered shapes
func ShortUUID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:])
}
