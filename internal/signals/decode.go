package signals

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// decodeText converts INI bytes to text. UTF-8 (with or without BOM) is used
// as-is, UTF-16 requires a BOM, and anything else is read as Windows-1252.
// Invalid sequences left after that are replaced.
func decodeText(data []byte) string {
	if bytes.HasPrefix(data, utf8BOM) {
		return strings.ToValidUTF8(string(data[len(utf8BOM):]), "�")
	}
	if len(data) >= 2 && ((data[0] == 0xff && data[1] == 0xfe) || (data[0] == 0xfe && data[1] == 0xff)) {
		decoder := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
		if out, _, err := transform.Bytes(decoder, data); err == nil {
			return strings.ToValidUTF8(string(out), "�")
		}
	}
	if utf8.Valid(data) {
		return string(data)
	}
	if out, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return string(out)
	}
	return strings.ToValidUTF8(string(data), "�")
}
