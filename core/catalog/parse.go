package catalog

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/encoding/ianaindex"
)

// Parse decodes a sound list. Documents declaring a non UTF-8 encoding are
// transcoded using the IANA charset registry.
func Parse(r io.Reader) (*SoundList, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader

	l := new(SoundList)
	if err := d.Decode(l); err != nil {
		return nil, fmt.Errorf("parse sound list: %w", err)
	}
	return l, nil
}

func ParseString(s string) (*SoundList, error) {
	return Parse(strings.NewReader(s))
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q: unsupported", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Fingerprint identifies a raw sound list document. Two responses with the
// same fingerprint carry the same catalog.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
