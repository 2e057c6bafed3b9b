package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDomain(t *testing.T) {
	for _, d := range []string{"example.com", "play.example.com", "localhost", "a-b.example.com", "1.2.3.4"} {
		assert.NoError(t, ValidDomain(d), d)
	}
	for _, d := range []string{"", "Example.com", ".example.com", "example.com.", "-a.com", "a_b.com", "exa mple.com",
		strings.Repeat("a", 64) + ".com", strings.Repeat("a.", 127) + "com"} {
		assert.Error(t, ValidDomain(d), d)
	}
}

func TestValidHostPort(t *testing.T) {
	assert.NoError(t, ValidHostPort("0.0.0.0:25565"))
	assert.Error(t, ValidHostPort("0.0.0.0"))
}
