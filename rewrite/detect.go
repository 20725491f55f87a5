package rewrite

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

// detectUTF looks for byte order mark. UTF-32 LE has to be checked before
// UTF-16 LE since they share first two bytes.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// encoding returns codec which strips byte order mark when decoding and puts
// it back when encoding.
func (e srcEncoding) encoding() encoding.Encoding {
	switch e {
	case encUTF8:
		return unicode.UTF8BOM
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	}
	return nil
}

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf-8 (bom)"
	case encUTF16BigEndian:
		return "utf-16be"
	case encUTF16LittleEndian:
		return "utf-16le"
	case encUTF32BigEndian:
		return "utf-32be"
	case encUTF32LittleEndian:
		return "utf-32le"
	}
	return "unknown"
}

// charsetRule matches @charset rule which per CSS syntax must be the very
// first bytes of the stylesheet, exactly in this form.
var charsetRule = regexp.MustCompile(`^@charset "([^"]*)";`)

// codec describes how stylesheet bytes map to text being processed.
type codec struct {
	name string
	enc  encoding.Encoding // nil when no conversion is necessary
}

// detectCodec selects stylesheet encoding: byte order mark first, @charset
// rule second, UTF-8 otherwise.
func detectCodec(data []byte) (codec, error) {
	if e := detectUTF(data); e != encUnknown {
		return codec{name: e.String(), enc: e.encoding()}, nil
	}

	m := charsetRule.FindSubmatch(data)
	if m == nil {
		return codec{name: "utf-8"}, nil
	}
	enc, name := charset.Lookup(string(m[1]))
	switch {
	case enc == nil:
		return codec{}, fmt.Errorf("unsupported @charset %q", m[1])
	case name == "utf-8" || strings.HasPrefix(name, "utf-16"):
		// @charset itself is ASCII, so UTF-16 declaration without BOM is meaningless
		return codec{name: "utf-8"}, nil
	}
	return codec{name: name, enc: enc}, nil
}

func (c codec) decode(data []byte) ([]byte, error) {
	if c.enc == nil {
		return data, nil
	}
	out, _, err := transform.Bytes(c.enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode stylesheet from %s: %w", c.name, err)
	}
	return out, nil
}

func (c codec) encode(text []byte) ([]byte, error) {
	if c.enc == nil {
		return text, nil
	}
	out, _, err := transform.Bytes(c.enc.NewEncoder(), text)
	if err != nil {
		return nil, fmt.Errorf("unable to encode stylesheet to %s: %w", c.name, err)
	}
	return out, nil
}

// isBinary checks if file content looks like something other than text.
func isBinary(head []byte) bool {
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		return true
	}
	if detectUTF(head) != encUnknown {
		return false
	}
	return bytes.IndexByte(head, 0) >= 0
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// enough for filetype signatures
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return head[:n], nil
}

// isStylesheetFile checks if file found during directory walk should be processed.
func isStylesheetFile(path string, extensions []string) (bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.ContainsFunc(extensions, func(e string) bool { return strings.ToLower(e) == ext }) {
		return false, nil
	}
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return !isBinary(head), nil
}
