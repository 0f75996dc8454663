package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomString returns n random bytes as unpadded base64url.
func RandomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("utils: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
