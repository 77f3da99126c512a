package affiliates

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet avoids ambiguous characters (0/O, 1/I/L) so codes survive
// being read aloud or hand-copied into a signup form.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 8

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate affiliate code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
