package nmi

import (
	// Go Internal Packages
	"fmt"
	"net/url"
	"strings"

	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"
)

// Transaction types accepted by the processor.
const (
	TypeSale     = "sale"
	TypeAuth     = "auth"
	TypeCapture  = "capture"
	TypeVoid     = "void"
	TypeRefund   = "refund"
	TypeCredit   = "credit"
	TypeValidate = "validate"
	TypeGeneric  = "generic"
)

var validTypes = map[string]bool{
	TypeSale:     true,
	TypeAuth:     true,
	TypeCapture:  true,
	TypeVoid:     true,
	TypeRefund:   true,
	TypeCredit:   true,
	TypeValidate: true,
	TypeGeneric:  true,
}

// ValidTransactionType reports whether t is in the processor's accepted set.
func ValidTransactionType(t string) bool {
	return validTypes[t]
}

// Descriptor carries the merchant's statement descriptor settings.
type Descriptor struct {
	Enabled bool
	Text    string
	Phone   string
}

// billingFields maps processor field name to the billing accessor.
var billingFields = []struct {
	apiField string
	value    func(a *models.Address) string
}{
	{"first_name", func(a *models.Address) string { return a.FirstName }},
	{"last_name", func(a *models.Address) string { return a.LastName }},
	{"company", func(a *models.Address) string { return a.Company }},
	{"address1", func(a *models.Address) string { return a.Address1 }},
	{"address2", func(a *models.Address) string { return a.Address2 }},
	{"city", func(a *models.Address) string { return a.City }},
	{"state", func(a *models.Address) string { return a.State }},
	{"zip", func(a *models.Address) string { return a.Zip }},
	{"country", func(a *models.Address) string { return a.Country }},
	{"phone", func(a *models.Address) string { return a.Phone }},
	{"email", func(a *models.Address) string { return a.Email }},
}

// shippingFields is the shipping variant of the same mapping.
var shippingFields = []struct {
	apiField string
	value    func(a *models.Address) string
}{
	{"shipping_first_name", func(a *models.Address) string { return a.FirstName }},
	{"shipping_last_name", func(a *models.Address) string { return a.LastName }},
	{"shipping_company", func(a *models.Address) string { return a.Company }},
	{"shipping_address1", func(a *models.Address) string { return a.Address1 }},
	{"shipping_address2", func(a *models.Address) string { return a.Address2 }},
	{"shipping_city", func(a *models.Address) string { return a.City }},
	{"shipping_state", func(a *models.Address) string { return a.State }},
	{"shipping_zip", func(a *models.Address) string { return a.Zip }},
	{"shipping_country", func(a *models.Address) string { return a.Country }},
}

// BuildSaleRequest assembles a sale-shaped transaction payload from payment
// data. The payment source is resolved in priority order: customer vault
// reference, then payment token, then raw card fields. A raw-card flow with
// any of number/expiry/cvv missing fails before anything is sent.
func BuildSaleRequest(data *models.PaymentData, descriptor Descriptor) (url.Values, error) {
	req := url.Values{}
	req.Set("type", TypeSale)
	req.Set("amount", FormatAmount(data.Amount))

	switch {
	case data.CustomerVaultID != "":
		req.Set("customer_vault_id", data.CustomerVaultID)
	case data.PaymentToken != "":
		req.Set("payment_token", data.PaymentToken)
	default:
		card, err := buildCardFields(data)
		if err != nil {
			return nil, err
		}
		for k, v := range card {
			req.Set(k, v[0])
		}
	}

	for _, f := range billingFields {
		setIfPresent(req, f.apiField, f.value(&data.Billing))
	}
	if data.Shipping != nil {
		for _, f := range shippingFields {
			setIfPresent(req, f.apiField, f.value(data.Shipping))
		}
	}

	setIfPresent(req, "orderid", data.OrderID)
	setIfPresent(req, "orderdescription", data.OrderDescription)

	if descriptor.Enabled {
		setIfPresent(req, "descriptor", descriptor.Text)
		setIfPresent(req, "descriptor_phone", descriptor.Phone)
	}

	if data.SendReceipt {
		req.Set("customer_receipt", "true")
	}
	if data.SavePaymentMethod {
		req.Set("customer_vault", "add_customer")
	}

	applyThreeDS(req, data.ThreeDS)

	return req, nil
}

// buildCardFields validates and normalizes the raw card triple.
func buildCardFields(data *models.PaymentData) (url.Values, error) {
	if strings.TrimSpace(data.CardNumber) == "" {
		return nil, errors.MissingFieldErr("ccnumber")
	}
	if strings.TrimSpace(data.CardExpiry) == "" {
		return nil, errors.MissingFieldErr("ccexp")
	}
	if strings.TrimSpace(data.CardCVV) == "" {
		return nil, errors.MissingFieldErr("cvv")
	}

	card := url.Values{}
	card.Set("ccnumber", models.StripNonDigits(data.CardNumber))
	card.Set("ccexp", FormatExpiry(data.CardExpiry))
	card.Set("cvv", models.StripNonDigits(data.CardCVV))
	return card, nil
}

// applyThreeDS forwards authentication evidence. Only fields that survived
// the boundary filter (non-empty strings) are present on the struct.
func applyThreeDS(req url.Values, e models.ThreeDSEvidence) {
	setIfPresent(req, "cavv", e.Cavv)
	setIfPresent(req, "xid", e.Xid)
	setIfPresent(req, "eci", e.Eci)
	setIfPresent(req, "cardholder_auth", e.CardholderAuth)
	setIfPresent(req, "three_ds_version", e.ThreeDSVersion)
	setIfPresent(req, "directory_server_id", e.DirectoryServerID)
	setIfPresent(req, "cardholder_info", e.CardholderInfo)
}

// setIfPresent sanitizes and sets a field, omitting it entirely when the
// sanitized value is empty.
func setIfPresent(req url.Values, field, value string) {
	clean := SanitizeText(value)
	if clean != "" {
		req.Set(field, clean)
	}
}

// SanitizeText trims whitespace and strips control characters from a
// plain-text field.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x20 && r != 0x7f {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FormatAmount renders an amount as a fixed-point decimal string with
// exactly two fraction digits and a locale-independent decimal point.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatExpiry normalizes a card expiry to the processor's MMYY form.
// Non-digits are stripped; 4 digits pass through as MMYY, 6 digits (MMYYYY)
// reduce to MM plus the last two year digits. Anything else passes through
// unchanged: the processor is the final validator.
func FormatExpiry(expiry string) string {
	digits := models.StripNonDigits(expiry)
	switch len(digits) {
	case 4:
		return digits
	case 6:
		return digits[0:2] + digits[4:6]
	}
	return digits
}
