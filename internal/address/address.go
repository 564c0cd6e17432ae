// Package address validates Solana account addresses.
package address

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Length is the decoded length of a Solana public key.
const Length = 32

// Well-known mints.
const (
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

var (
	// ErrInvalidAddress is returned when a string is not a base58 32-byte key.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrOffCurve is returned when a wallet address is a program-derived address.
	ErrOffCurve = errors.New("address is not on the ed25519 curve")
)

// Decode decodes a base58 address into its 32 raw bytes.
func Decode(addr string) ([]byte, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	raw, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	if len(raw) != Length {
		return nil, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, addr, len(raw))
	}
	return raw, nil
}

// Encode encodes 32 raw bytes as a base58 address.
func Encode(raw []byte) (string, error) {
	if len(raw) != Length {
		return "", fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(raw))
	}
	return base58.Encode(raw), nil
}

// ValidateMint checks that addr is a well-formed account address.
// Mints may be program-derived, so no curve check is applied.
func ValidateMint(addr string) error {
	_, err := Decode(addr)
	return err
}

// ValidateWallet checks that addr is a well-formed address owned by a keypair,
// i.e. a point on the ed25519 curve.
func ValidateWallet(addr string) error {
	raw, err := Decode(addr)
	if err != nil {
		return err
	}
	if !IsOnCurve(raw) {
		return fmt.Errorf("%w: %s", ErrOffCurve, addr)
	}
	return nil
}

// IsOnCurve reports whether point is a valid compressed ed25519 point.
func IsOnCurve(point []byte) bool {
	if len(point) != Length {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
