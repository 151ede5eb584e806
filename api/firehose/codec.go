package firehose

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Newline is the record delimiter appended to every forwarded payload.
const Newline = "\n"

func EncodeData(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeData(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// DecodeConcatenated decodes text made of several independently padded
// base64 segments, e.g. base64(payload) + base64("\n"). A padding run
// closes a segment; the next character starts a new one.
func DecodeConcatenated(s string) ([]byte, error) {
	out := make([]byte, 0, base64.StdEncoding.DecodedLen(len(s)))
	for off := 0; len(s) > 0; {
		end := len(s)
		if i := strings.IndexByte(s, '='); i >= 0 {
			end = i
			for end < len(s) && s[end] == '=' {
				end++
			}
		}
		b, err := base64.StdEncoding.DecodeString(s[:end])
		if err != nil {
			return nil, fmt.Errorf("segment at offset %d: %w", off, err)
		}
		out = append(out, b...)
		off += end
		s = s[end:]
	}
	return out, nil
}
