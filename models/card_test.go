package models

import (
	// Go Internal Packages
	"testing"

	// External Packages
	"github.com/stretchr/testify/require"
)

func TestDetectCardBrand(t *testing.T) {
	tests := []struct {
		number string
		brand  CardBrand
	}{
		{"4111111111111111", BrandVisa},
		{"4916994849694126", BrandVisa},
		{"5105105105105100", BrandMastercard},
		{"5555555555554444", BrandMastercard},
		{"5605105105105100", BrandUnknown}, // 56 is outside 51-55
		{"341111111111111", BrandAmex},
		{"371111111111111", BrandAmex},
		{"6011000990139424", BrandDiscover},
		{"6511111111111117", BrandDiscover},
		{"30569309025904", BrandDiners},
		{"36148900647913", BrandDiners},
		{"38520000023237", BrandDiners},
		{"3530111333300000", BrandJCB},
		{"", BrandUnknown},
		{"abcd", BrandUnknown},
		{"9999999999999999", BrandUnknown},
	}

	for _, tc := range tests {
		require.Equal(t, tc.brand, DetectCardBrand(tc.number), "number %q", tc.number)
	}
}

func TestDetectCardBrand_IgnoresSeparators(t *testing.T) {
	require.Equal(t, BrandVisa, DetectCardBrand("4111 1111 1111 1111"))
	require.Equal(t, BrandMastercard, DetectCardBrand("5105-1051-0510-5100"))
}

func TestKnownBrand(t *testing.T) {
	for _, b := range []string{"visa", "mastercard", "amex", "discover", "diners", "jcb"} {
		require.True(t, KnownBrand(b), b)
	}
	require.False(t, KnownBrand("unknown"))
	require.False(t, KnownBrand("maestro"))
	require.False(t, KnownBrand(""))
}

func TestValidLuhn(t *testing.T) {
	t.Run("valid numbers", func(t *testing.T) {
		for _, n := range []string{
			"4111111111111111",
			"5105105105105100",
			"371449635398431",
			"6011000990139424",
			"4111 1111 1111 1111", // separators are stripped first
		} {
			require.True(t, ValidLuhn(n), n)
		}
	})

	t.Run("invalid numbers", func(t *testing.T) {
		for _, n := range []string{
			"4111111111111112", // bad checksum
			"411111111111",     // 12 digits, too short
			"41111111111111111111", // 20 digits, too long
			"",
		} {
			require.False(t, ValidLuhn(n), n)
		}
	})
}

func TestStripNonDigits(t *testing.T) {
	require.Equal(t, "1225", StripNonDigits("12/25"))
	require.Equal(t, "4111111111111111", StripNonDigits("4111-1111-1111-1111"))
	require.Equal(t, "", StripNonDigits("no digits"))
	require.Equal(t, "0123", StripNonDigits("0123"))
}

func TestMaskCardNumber(t *testing.T) {
	require.Equal(t, "************1111", MaskCardNumber("4111111111111111"))
	require.Equal(t, "************1111", MaskCardNumber("4111 1111 1111 1111"))
	require.Equal(t, "****", MaskCardNumber("1234"))
	require.Equal(t, "**", MaskCardNumber("12"))
	require.Equal(t, "", MaskCardNumber(""))
}
