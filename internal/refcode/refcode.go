// Package refcode generates the human-readable reference identifiers used
// across the API: order numbers, return numbers, and store-credit codes.
// Uniqueness is by convention (timestamp plus random suffix), not enforced.
package refcode

import (
	"crypto/rand"
	"fmt"
	"time"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// OrderNumber returns a new order reference, e.g. "ORD-1756120000000-4F2K".
func OrderNumber() string {
	return stamped("ORD", 4)
}

// ReturnNumber returns a new return reference, e.g. "RET-1756120000000-9QX1".
func ReturnNumber() string {
	return stamped("RET", 4)
}

// CreditCode returns a new store-credit code in the form
// "CREDIT-<unix millis>-<6 uppercase base36 characters>".
func CreditCode() string {
	return stamped("CREDIT", 6)
}

func stamped(prefix string, suffixLen int) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), randBase36(suffixLen))
}

func randBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		nano := time.Now().UnixNano()
		for i := range buf {
			buf[i] = base36Alphabet[nano%36]
			nano /= 36
		}
		return string(buf)
	}
	for i := range buf {
		buf[i] = base36Alphabet[int(buf[i])%36]
	}
	return string(buf)
}
