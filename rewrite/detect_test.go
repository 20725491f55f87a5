package rewrite

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestDetectUTF(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want srcEncoding
	}{
		{"UTF-8 BOM", []byte{0xEF, 0xBB, 0xBF, 0x00}, encUTF8},
		{"UTF-16 Big Endian BOM", []byte{0xFE, 0xFF, 0x00, 0x00}, encUTF16BigEndian},
		{"UTF-16 Little Endian BOM", []byte{0xFF, 0xFE, 0x01, 0x00}, encUTF16LittleEndian},
		{"UTF-32 Big Endian BOM", []byte{0x00, 0x00, 0xFE, 0xFF}, encUTF32BigEndian},
		{"UTF-32 Little Endian BOM", []byte{0xFF, 0xFE, 0x00, 0x00}, encUTF32LittleEndian},
		{"No BOM", []byte("a {}"), encUnknown},
		{"Short", []byte{0xEF}, encUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectUTF(tt.buf); got != tt.want {
				t.Errorf("detectUTF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectCodec(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     string
		identity bool
		fails    bool
	}{
		{"plain", []byte("a {}"), "utf-8", true, false},
		{"utf-8 charset", []byte(`@charset "UTF-8"; a {}`), "utf-8", true, false},
		{"utf-16 charset without bom", []byte(`@charset "utf-16"; a {}`), "utf-8", true, false},
		{"single byte charset", []byte(`@charset "windows-1251"; a {}`), "windows-1251", false, false},
		{"charset not first", []byte(` @charset "windows-1251"; a {}`), "utf-8", true, false},
		{"unknown charset", []byte(`@charset "klingon"; a {}`), "", false, true},
		{"bom wins", append([]byte{0xEF, 0xBB, 0xBF}, `@charset "windows-1251";`...), "utf-8 (bom)", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := detectCodec(tt.data)
			if tt.fails {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("detectCodec() error = %v", err)
			}
			if c.name != tt.want {
				t.Errorf("codec = %q, want %q", c.name, tt.want)
			}
			if (c.enc == nil) != tt.identity {
				t.Errorf("identity = %v, want %v", c.enc == nil, tt.identity)
			}
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	src, err := charmap.Windows1251.NewEncoder().Bytes([]byte("@charset \"windows-1251\";\n/* Привет */ a {}"))
	if err != nil {
		t.Fatal(err)
	}

	c, err := detectCodec(src)
	if err != nil {
		t.Fatalf("detectCodec() error = %v", err)
	}
	text, err := c.decode(src)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if string(text) != "@charset \"windows-1251\";\n/* Привет */ a {}" {
		t.Errorf("decoded = %q", text)
	}
	back, err := c.encode(text)
	if err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	if string(back) != string(src) {
		t.Errorf("round trip changed bytes")
	}

	// not representable in windows-1251
	if _, err := c.encode([]byte("a::before { content: \"✨\" }")); err == nil {
		t.Error("expected encoding error")
	}
}

func TestIsBinary(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	tests := []struct {
		name string
		head []byte
		want bool
	}{
		{"css", []byte("a { color: red }"), false},
		{"png", png, true},
		{"nul", []byte("a {\x00}"), true},
		{"utf-16", []byte{0xFF, 0xFE, 'a', 0, ' ', 0}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBinary(tt.head); got != tt.want {
				t.Errorf("isBinary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStylesheetFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	exts := []string{".css", ".scss"}
	tests := []struct {
		path string
		want bool
	}{
		{write("a.css", []byte("a {}")), true},
		{write("b.SCSS", []byte(".b { &:hover {} }")), true},
		{write("c.txt", []byte("a {}")), false},
		{write("d.css", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}), false},
		{write("e.css", nil), true},
	}
	for _, tt := range tests {
		got, err := isStylesheetFile(tt.path, exts)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("isStylesheetFile(%s) = %v, want %v", filepath.Base(tt.path), got, tt.want)
		}
	}

	if _, err := isStylesheetFile(filepath.Join(dir, "missing.css"), exts); err == nil {
		t.Error("expected error for missing file")
	}
}
