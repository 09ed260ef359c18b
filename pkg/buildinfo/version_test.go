package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.3"
	if ua := UserAgent(); !strings.HasPrefix(ua, "bee/v1.2.3 ") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(String(), "v1.2.3") || !strings.Contains(Template(), "v1.2.3") {
		t.Error("String and Template should include the version")
	}
}
