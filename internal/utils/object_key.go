package utils

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateObjectKey builds a storage key for an uploaded file: the configured
// prefix, the original base name, a uuid and the extension implied by the
// content type.
func GenerateObjectKey(prefix, originalName, contentType string) string {
	base := strings.TrimSuffix(path.Base(originalName), path.Ext(originalName))
	if base == "" || base == "." {
		base = "upload"
	}

	ext := "bin"
	if idx := strings.Index(contentType, "/"); idx >= 0 && idx < len(contentType)-1 {
		ext = contentType[idx+1:]
	}

	return fmt.Sprintf("%s/%s_%d_%s.%s", prefix, base, time.Now().UnixMilli(), uuid.NewString(), ext)
}
