package crypto

import (
	"encoding/base64"
	"strings"
)

// B64 returns unpadded standard base64, the encoding used for every key,
// signature and message in the protocol.
func B64(b []byte) string { return base64.RawStdEncoding.EncodeToString(b) }

// DecodeB64 decodes unpadded standard base64. Trailing padding is tolerated.
func DecodeB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
