package models

import (
	// Go Internal Packages
	"strings"
)

// CardBrand is a card network detected from the leading digits of a PAN.
type CardBrand string

const (
	BrandVisa       CardBrand = "visa"
	BrandMastercard CardBrand = "mastercard"
	BrandAmex       CardBrand = "amex"
	BrandDiscover   CardBrand = "discover"
	BrandDiners     CardBrand = "diners"
	BrandJCB        CardBrand = "jcb"
	BrandUnknown    CardBrand = "unknown"
)

// KnownBrand reports whether s names a brand the detection table can
// produce (other than unknown).
func KnownBrand(s string) bool {
	switch CardBrand(s) {
	case BrandVisa, BrandMastercard, BrandAmex, BrandDiscover, BrandDiners, BrandJCB:
		return true
	}
	return false
}

// DetectCardBrand classifies a card number by its leading digits. This is the
// single brand table; anything restricting or displaying card types must go
// through it so client and server can never disagree.
func DetectCardBrand(number string) CardBrand {
	digits := StripNonDigits(number)
	if digits == "" {
		return BrandUnknown
	}

	switch {
	case strings.HasPrefix(digits, "4"):
		return BrandVisa
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return BrandMastercard
	case strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37"):
		return BrandAmex
	case strings.HasPrefix(digits, "6011") || strings.HasPrefix(digits, "65"):
		return BrandDiscover
	case strings.HasPrefix(digits, "30") || strings.HasPrefix(digits, "36") ||
		strings.HasPrefix(digits, "38") || strings.HasPrefix(digits, "39"):
		return BrandDiners
	case strings.HasPrefix(digits, "35"):
		return BrandJCB
	}
	return BrandUnknown
}

// ValidLuhn reports whether a 13-19 digit card number passes the Luhn
// checksum. Advisory only; a failing number is still submitted and the
// processor stays the final validator.
func ValidLuhn(number string) bool {
	digits := StripNonDigits(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	alternate := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if alternate {
			d *= 2
			if d > 9 {
				d = d%10 + 1
			}
		}
		sum += d
		alternate = !alternate
	}
	return sum%10 == 0
}

// StripNonDigits drops every non-digit byte from s.
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// MaskCardNumber keeps the last four digits and masks the rest, for logs and
// order notes.
func MaskCardNumber(number string) string {
	digits := StripNonDigits(number)
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
