// Package obfuscate mangles email addresses into a mix of raw characters and
// numeric character references. Browsers render the result unchanged while
// naive scrapers looking for "user@host" do not match it.
package obfuscate

import (
	"hash/crc32"
	"strconv"
	"strings"
	"unicode/utf8"
)

const mailtoPrefix = "mailto:"

// Email returns the obfuscated form of address. The output is a pure function
// of address: the per-character choice between raw, hex and decimal forms is
// driven by a seed derived from the CRC-32 of "mailto:"+address.
//
// When asLink is true the result is an anchor whose href carries the encoded
// mailto: URL and whose text is the encoded address.
func Email(address string, asLink bool) string {
	addr := mailtoPrefix + address
	chars := []rune(addr)
	seed := uint64(crc32.ChecksumIEEE([]byte(addr))) / uint64(utf8.RuneCountInString(addr))

	pieces := make([]string, len(chars))
	for key, c := range chars {
		pieces[key] = encodeRune(c, seed, key)
	}

	full := strings.Join(pieces, "")
	// Index based: assumes the prefix encodes to exactly len("mailto:") pieces.
	visible := strings.Join(pieces[len(mailtoPrefix):], "")

	if asLink {
		return `<a href="` + full + `">` + visible + `</a>`
	}
	return visible
}

func encodeRune(c rune, seed uint64, key int) string {
	if c >= utf8.RuneSelf {
		return string(c)
	}
	r := (seed * uint64(1+key)) % 100
	switch {
	case r > 90 && c != '@':
		return string(c)
	case r < 45:
		return "&#x" + strconv.FormatInt(int64(c), 16) + ";"
	default:
		return "&#" + strconv.Itoa(int(c)) + ";"
	}
}
