// Package services - services/code_service.go
package services

import (
	"crypto/rand"
	"math/big"

	"go-typing-comp/logger"
)

// join codes are fixed-length uppercase alphanumerics
const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 5
)

// codes we never hand out, mostly words that would look like an error state
var blacklistedCodes = map[string]bool{
	"ERROR": true,
	"FALSE": true,
	"NULL0": true,
	"UNDEF": true,
	"ADMIN": true,
}

// GenerateJoinCode produces a random 5-character uppercase alphanumeric join
// code, retrying past the blacklist. Uniqueness against already-issued codes
// is the caller's job (the store retries on duplicate inserts).
func GenerateJoinCode() string {
	for {
		code := randomCode(codeLength)
		if !blacklistedCodes[code] {
			return code
		}
		logger.Debug.Printf("GenerateJoinCode: rejected blacklisted code %s, retrying", code)
	}
}

// randomCode builds a code from crypto/rand so codes are not guessable from
// one another.
func randomCode(length int) string {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			logger.Error.Printf("randomCode: entropy source failed: %v", err)
			n = big.NewInt(int64(i) % int64(len(codeCharset)))
		}
		buf[i] = codeCharset[n.Int64()]
	}
	return string(buf)
}
