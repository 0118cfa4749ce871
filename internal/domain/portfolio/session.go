package portfolio

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	sessionPrefix    = "session_"
	sessionSuffixLen = 9
	base36           = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewSessionID returns the public identifier for an anonymous upload:
// session_<unix-ms>_<9 base36 chars>.
func NewSessionID(now time.Time) string {
	var sb strings.Builder
	alphabet := big.NewInt(int64(len(base36)))
	for range sessionSuffixLen {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(fmt.Sprintf("session id entropy: %v", err))
		}
		sb.WriteByte(base36[n.Int64()])
	}
	return fmt.Sprintf("%s%d_%s", sessionPrefix, now.UnixMilli(), sb.String())
}

// ValidID rejects identifiers that could not have been issued by this
// service, so junk never reaches the database.
func ValidID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
