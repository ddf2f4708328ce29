package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestDeterministic(t *testing.T) {
	content := []byte("cuenta de cobro enero 2025")
	assert.Equal(t, Digest(content), Digest(content))
}

func TestDigestDistinguishesContent(t *testing.T) {
	a := Digest([]byte("payroll period 01-2025"))
	b := Digest([]byte("payroll period 02-2025"))
	assert.NotEqual(t, a, b)
}

func TestDigestEmptyInput(t *testing.T) {
	// Well-known SHA-256 of the empty string.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Digest([]byte{}))
}

func TestDigestLength(t *testing.T) {
	assert.Len(t, Digest([]byte("x")), 64)
}
