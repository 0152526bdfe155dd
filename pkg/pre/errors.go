package pre

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCiphertext is returned whenever a ciphertext fails verification.
	// It is deliberately silent about which check failed.
	ErrInvalidCiphertext = errors.New("pre: invalid ciphertext")

	ErrInvalidParams     = errors.New("pre: invalid parameters")
	ErrInvalidPublicKey  = errors.New("pre: invalid public key")
	ErrInvalidSecretKey  = errors.New("pre: invalid secret key")
	ErrInvalidReKey      = errors.New("pre: invalid reencryption key")
	ErrNilKey            = errors.New("pre: nil key")
	ErrNegativeMessage   = errors.New("pre: message is negative")
	ErrMessageTooLarge   = errors.New("pre: message does not fit below the modulus")
	ErrUnknownCiphertext = errors.New("pre: unknown ciphertext kind")
)

// invalid reports ErrInvalidCiphertext, keeping cause reachable through errors.Is.
func invalid(cause error) error {
	if cause == nil {
		return ErrInvalidCiphertext
	}
	return fmt.Errorf("%w: %w", ErrInvalidCiphertext, cause)
}
