package util

import (
	"strings"
	"testing"
)

func TestNextCopyName_FirstCopy(t *testing.T) {
	got := NextCopyName("email", map[string]bool{"email": true})
	if got != "email_copy" {
		t.Fatalf("got %q, want %q", got, "email_copy")
	}
}

func TestNextCopyName_ProbesPastTaken(t *testing.T) {
	taken := map[string]bool{
		"email":       true,
		"email_copy":  true,
		"email_copy2": true,
	}
	got := NextCopyName("email", taken)
	if got != "email_copy3" {
		t.Fatalf("got %q, want %q", got, "email_copy3")
	}
}

func TestScopeTag(t *testing.T) {
	if got := ScopeTag("type", 3); got != "type:3" {
		t.Fatalf("got %q", got)
	}
	if got := ScopeTag("user", 12); got != "user:12" {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizePart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  John  ", "john"},
		{"John Doe", "john_doe"},
		{"A-B_C", "a-b_c"},
		{"Hello!@#$%^&*()World", "helloworld"},
		{"", "unknown"},
		{"   ", "unknown"},
	}

	for _, tt := range tests {
		got := SanitizePart(tt.in)
		if got != tt.want {
			t.Fatalf("SanitizePart(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtFromFilenameOrMime(t *testing.T) {
	if got := ExtFromFilenameOrMime("scan.PDF", ""); got != ".pdf" {
		t.Fatalf("got %q", got)
	}
	if got := ExtFromFilenameOrMime("noext", "image/png"); got != ".png" {
		t.Fatalf("got %q", got)
	}
	if got := ExtFromFilenameOrMime("noext", "application/x-unknown"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestAttachmentObjectName(t *testing.T) {
	got := AttachmentObjectName(12, "Proof Of Address", "My Scan.pdf", "")

	if !strings.HasPrefix(got, "attachments/12/proof_of_address/") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "_my_scan.pdf") {
		t.Fatalf("unexpected suffix: %q", got)
	}
}
