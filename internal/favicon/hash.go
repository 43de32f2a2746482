package favicon

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// mimeLineLength is the line width of the base64 form Shodan hashes.
const mimeLineLength = 76

// HashIcon returns the Shodan-compatible fingerprint of icon bytes: the
// signed 32-bit murmur3 hash of their line-wrapped base64 encoding.
func HashIcon(data []byte) string {
	return strconv.FormatInt(int64(int32(murmur3.Sum32(encodeMIME(data)))), 10)
}

// encodeMIME encodes data as standard base64 with a newline after every
// 76 characters, final line included.
func encodeMIME(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	b.Grow(len(encoded) + len(encoded)/mimeLineLength + 1)
	for i := 0; i < len(encoded); i += mimeLineLength {
		end := i + mimeLineLength
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString(encoded[i:end])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
