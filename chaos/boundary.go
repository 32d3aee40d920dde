package chaos

import (
	"fmt"
	"math/rand"

	"github.com/haybale/chaff/types"
)

// cp1252Undefined are byte values with no assigned character in
// Windows-1252.
var cp1252Undefined = []byte{0x81, 0x8D, 0x8F}

// invalidBytes returns a byte sequence that is invalid in the given output
// encoding, plus an audit description. The bytes simulate encoding
// corruption when written raw between two lines.
func invalidBytes(enc types.Encoding, rng *rand.Rand) ([]byte, string) {
	switch enc {
	case types.EncodingUTF16LE:
		// Unpaired high surrogate U+D800, little-endian.
		return []byte{0x00, 0xD8}, "injected unpaired UTF-16 high surrogate between lines"

	case types.EncodingWindows1252:
		b := cp1252Undefined[rng.Intn(len(cp1252Undefined))]
		return []byte{b}, fmt.Sprintf("injected undefined Windows-1252 byte 0x%02X between lines", b)

	default:
		// Orphan continuation bytes; 0xBF doubles as the BOM tail byte.
		return []byte{0x80, 0xBF}, "injected orphan UTF-8 continuation bytes between lines"
	}
}
