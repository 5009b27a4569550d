// Package hex provides utilities for encoding hexadecimal strings with
// the "0x" prefix commonly used in Ethereum.
package hex

import "encoding/hex"

// Encode returns the hexadecimal encoding of src with "0x" prefix.
func Encode(src []byte) string {
	return "0x" + hex.EncodeToString(src)
}
