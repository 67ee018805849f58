package shared

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]+$`), s)

	other, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}

func TestMakeReferralCode(t *testing.T) {
	code, err := MakeReferralCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^REF[0-9A-F]{8}$`), code)
}
