package usecase

import (
	"crypto/rand"
	"io"
)

// generateCodeString creates a secure, random, human-readable access code.
// Format: PREFIX-XXXX-XXXX with a charset that avoids ambiguous characters
// like O/0, I/1, l. The prefix lets agencies brand their batches.
func generateCodeString(prefix string) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 8

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}

	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}

	body := string(buffer[0:4]) + "-" + string(buffer[4:8])
	if prefix == "" {
		return body, nil
	}
	return prefix + "-" + body, nil
}
