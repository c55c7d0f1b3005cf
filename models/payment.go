package models

// Address carries billing or shipping contact fields. Empty fields are
// omitted from outgoing payloads, never sent as empty strings.
type Address struct {
	FirstName string
	LastName  string
	Company   string
	Address1  string
	Address2  string
	City      string
	State     string
	Zip       string
	Country   string
	Phone     string
	Email     string
}

// ThreeDSEvidence is the cardholder-authentication evidence produced by a
// completed step-up verification. All fields are optional; an empty string
// means absent and the field is never forwarded.
type ThreeDSEvidence struct {
	Cavv              string
	Xid               string
	Eci               string
	CardholderAuth    string
	ThreeDSVersion    string
	DirectoryServerID string
	CardholderInfo    string
}

// Empty reports whether no evidence field is set.
func (e ThreeDSEvidence) Empty() bool {
	return e == ThreeDSEvidence{}
}

// PaymentData is the heterogeneous input a transaction request is built
// from. Exactly one payment source is used, resolved in priority order:
// CustomerVaultID, then PaymentToken, then the raw card triple.
type PaymentData struct {
	Amount float64

	// Payment source variants, mutually exclusive.
	CustomerVaultID string
	PaymentToken    string
	CardNumber      string
	CardExpiry      string
	CardCVV         string

	Billing  Address
	Shipping *Address

	OrderID          string
	OrderDescription string

	SavePaymentMethod bool
	SendReceipt       bool

	ThreeDS ThreeDSEvidence
}

// HasRawCard reports whether the request falls through to the raw-card flow.
func (p *PaymentData) HasRawCard() bool {
	return p.CustomerVaultID == "" && p.PaymentToken == ""
}
