package chain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the byte length of an EVM account address.
const AddressLength = 20

// Address is a 20-byte EVM account address.
type Address [AddressLength]byte

// ParseAddress decodes a 0x-prefixed hex address. Checksum casing is not
// enforced; all-lowercase and all-uppercase input is accepted as well.
func ParseAddress(s string) (Address, error) {
	var addr Address
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return addr, fmt.Errorf("address must start with 0x")
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return addr, fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != AddressLength {
		return addr, fmt.Errorf("address must be %d bytes, got %d", AddressLength, len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

// Hex renders the address with its EIP-55 checksum casing.
func (a Address) Hex() string {
	lower := hex.EncodeToString(a[:])

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	sum := hasher.Sum(nil)

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := sum[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// IsZero reports whether the address is the zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}
