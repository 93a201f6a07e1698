package orders

import (
	"crypto/rand"
	"fmt"
)

// trackingAlphabet drops I, O, 0 and 1 so a code survives handwriting in a
// bank-transfer memo. 32 symbols over 8 positions gives 40 bits, enough to
// keep collisions negligible at the volumes this store sees and enumeration
// impractical for other customers.
const (
	trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	trackingLength   = 8
	trackingPrefix   = "FD-"
)

// NewTrackingCode generates a short human-typeable payment-matching code,
// e.g. "FD-K7KQW3ZM".
func NewTrackingCode() (string, error) {
	buf := make([]byte, trackingLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		// 256 % 32 == 0, so the modulo introduces no bias
		buf[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}
	return trackingPrefix + string(buf), nil
}
