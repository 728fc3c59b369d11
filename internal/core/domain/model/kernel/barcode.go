package kernel

import (
	"strings"
	"unicode"

	"warehouse/internal/pkg/errs"
)

// ErrBarcodeIsEmpty is returned when a raw barcode has no digits.
var ErrBarcodeIsEmpty = errs.NewValueIsRequiredError("barcode must contain at least one digit")

// Barcode is the digits-only label printed on a unit.
type Barcode string

// NewBarcode keeps only the ASCII digits of raw.
func NewBarcode(raw string) (Barcode, error) {
	normalized := NormalizeBarcode(raw)
	if normalized == "" {
		return "", ErrBarcodeIsEmpty
	}
	return Barcode(normalized), nil
}

func (b Barcode) String() string {
	return string(b)
}

// MatchKey is the canonical form used to bind external order identifiers to units.
func (b Barcode) MatchKey() string {
	return MatchKey(string(b))
}

// NormalizeBarcode strips everything except ASCII digits.
func NormalizeBarcode(raw string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
}

// MatchKey normalizes raw and drops the "00" prefix and the two trailing
// check characters that some scanners append, e.g. "0012345600" -> "123456".
func MatchKey(raw string) string {
	normalized := NormalizeBarcode(raw)
	if len(normalized) >= 4 && strings.HasPrefix(normalized, "00") {
		return normalized[2 : len(normalized)-2]
	}
	return normalized
}
