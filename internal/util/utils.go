package util

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// NextCopyName derives the machine key for a duplicated field: base_copy,
// then base_copy2, base_copy3, ... until the key is free in the scope.
func NextCopyName(base string, taken map[string]bool) string {
	candidate := base + "_copy"
	for i := 2; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s_copy%d", base, i)
	}
	return candidate
}

// ScopeTag builds the audit scope marker, e.g. "type:3" or "user:12".
func ScopeTag(kind string, id uint) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

var sanitizeRe = regexp.MustCompile(`[^a-z0-9_\-]`)

func SanitizePart(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRe.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	return s
}

func ExtFromFilenameOrMime(filename, mime string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext != "" {
		return ext
	}
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
