// Package barcode generates EAN-13 codes for products created without one.
// Generated codes use the 200 prefix (reserved for internal use), so they
// never collide with retail codes from real suppliers.
package barcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const internalPrefix = "200"

var ErrInvalidBase = errors.New("barcode base must be exactly 12 digits")

// CheckDigit computes the EAN-13 checksum digit for a 12-digit base: digits
// at even 0-indexed positions weigh 1, odd positions weigh 3, and the check
// digit rounds the weighted sum up to the next multiple of ten.
func CheckDigit(base string) (int, error) {
	if len(base) != 12 {
		return 0, ErrInvalidBase
	}
	sum := 0
	for i, c := range base {
		if c < '0' || c > '9' {
			return 0, ErrInvalidBase
		}
		digit := int(c - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return (10 - sum%10) % 10, nil
}

// Valid reports whether code is a well-formed EAN-13 with a correct checksum.
func Valid(code string) bool {
	if len(code) != 13 {
		return false
	}
	check, err := CheckDigit(code[:12])
	if err != nil {
		return false
	}
	return int(code[12]-'0') == check
}

// Generate builds a 13-digit code: the internal-use prefix, a 5-digit product
// reference, 4 random filler digits and the checksum digit. The random filler
// gives callers room to regenerate on a rare collision with an existing code.
func Generate(productRef uint) (string, error) {
	filler, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s%05d%04d", internalPrefix, productRef%100000, filler.Int64())
	check, err := CheckDigit(base)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", base, check), nil
}
