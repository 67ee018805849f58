package shared

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes; the resulting string is twice as long as size.
func MakeRandHexString(size int) (string, error) {

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// MakeReferralCode builds a referral code of the form REF + 8 upper-case hex
// characters, e.g. "REF9F2D4C3A".
func MakeReferralCode() (string, error) {
	s, err := MakeRandHexString(4)
	if err != nil {
		return "", err
	}
	return "REF" + strings.ToUpper(s), nil
}
