package nmi

import (
	// Go Internal Packages
	"fmt"
	"net/url"
)

// Processor three-way status values carried in the "response" field.
const (
	statusApproved = "1"
	statusDeclined = "2"
	statusError    = "3"
)

// resultApproved is the result code refining a successful response into an
// approval.
const resultApproved = "100"

// Response is the canonical, typed result of one processor exchange. It is
// built once per call and never mutated afterwards.
type Response struct {
	Success  bool
	Approved bool
	Declined bool
	Error    bool

	TransactionID   string
	AuthCode        string
	ResponseCode    string
	ResponseMessage string
	CVVResponse     string
	AVSResponse     string
	CustomerVaultID string

	Raw map[string]string
}

// ParseResponse decodes the processor's urlencoded reply body into a flat
// string map. Repeated keys keep the last occurrence, matching standard
// form-decoding semantics.
func ParseResponse(body string) map[string]string {
	// ParseQuery returns everything it decoded even on a malformed pair;
	// classification treats missing fields as unknown.
	values, _ := url.ParseQuery(body)
	parsed := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			parsed[key] = vals[len(vals)-1]
		}
	}
	return parsed
}

// Classify normalizes a parsed reply into a Response. Pure function: the
// same map always yields an identical Response.
func Classify(params map[string]string) Response {
	resp := Response{
		TransactionID:   params["transactionid"],
		AuthCode:        params["authcode"],
		ResponseCode:    params["response_code"],
		ResponseMessage: params["responsetext"],
		CVVResponse:     params["cvvresponse"],
		AVSResponse:     params["avsresponse"],
		CustomerVaultID: params["customer_vault_id"],
		Raw:             params,
	}

	if resp.ResponseMessage == "" {
		resp.ResponseMessage = "Unknown response"
	}

	switch params["response"] {
	case statusApproved:
		resp.Success = true
		resp.Approved = resp.ResponseCode == resultApproved
	case statusDeclined:
		resp.Declined = true
	case statusError:
		resp.Error = true
	}
	// Any other status leaves all flags false; callers treat that as an
	// unknown processor fault.

	return resp
}

var cvvCodes = map[string]string{
	"M": "Match",
	"N": "No Match",
	"P": "Not Processed",
	"S": "Merchant has indicated that CVV2/CVC2 is not present on card",
	"U": "Issuer is not certified and/or has not provided Visa encryption keys",
}

var avsCodes = map[string]string{
	"X": "Exact match, 9-character numeric ZIP",
	"Y": "Exact match, 5-character numeric ZIP",
	"D": "Exact match, 5-character numeric ZIP",
	"M": "Exact match, 5-character numeric ZIP",
	"2": "Exact match, 5-character numeric ZIP, customer name",
	"6": "Exact match, 5-character numeric ZIP, customer name",
	"A": "Address match only",
	"B": "Address match only",
	"3": "Address, customer name match only",
	"7": "Address, customer name match only",
	"W": "9-character numeric ZIP match only",
	"Z": "5-character ZIP match only",
	"P": "5-character ZIP match only",
	"L": "5-character ZIP match only",
	"1": "5-character ZIP, customer name match only",
	"5": "5-character ZIP, customer name match only",
	"N": "No address or ZIP match only",
	"C": "No address or ZIP match only",
	"4": "No address or ZIP or customer name match only",
	"8": "No address or ZIP or customer name match only",
	"U": "Address unavailable",
	"G": "Non-U.S. issuer does not participate",
	"I": "Non-U.S. issuer does not participate",
	"R": "Issuer system unavailable",
	"E": "Not a mail/phone order",
	"S": "Service not supported",
	"0": "AVS not available",
	"O": "AVS not available",
}

var resultCodes = map[string]string{
	"100": "Transaction was approved.",
	"200": "Transaction was declined by processor.",
	"201": "Do not honor.",
	"202": "Insufficient funds.",
	"203": "Over limit.",
	"204": "Transaction not allowed.",
	"220": "Incorrect payment information.",
	"221": "No such card issuer.",
	"222": "No card number on file with issuer.",
	"223": "Expired card.",
	"224": "Invalid expiration date.",
	"225": "Invalid card security code.",
	"226": "Invalid PIN.",
	"240": "Call issuer for further information.",
	"250": "Pick up card.",
	"251": "Lost card.",
	"252": "Stolen card.",
	"253": "Fraudulent card.",
	"260": "Declined with further instructions available. (See response text)",
	"261": "Declined-Stop all recurring payments.",
	"262": "Declined-Stop this recurring program.",
	"263": "Declined-Update cardholder data available.",
	"264": "Declined-Retry in a few days.",
	"300": "Transaction was rejected by gateway.",
	"400": "Transaction error returned by processor.",
	"410": "Invalid merchant configuration.",
	"411": "Merchant account is inactive.",
	"420": "Communication error.",
	"421": "Communication error with issuer.",
	"430": "Duplicate transaction at processor.",
	"440": "Processor format error.",
	"441": "Invalid transaction information.",
	"460": "Processor feature not available.",
	"461": "Unsupported card type.",
}

// CVVResponseText renders a CVV match code for order notes and logs.
func CVVResponseText(code string) string {
	return lookupCode(cvvCodes, code)
}

// AVSResponseText renders an address-verification code.
func AVSResponseText(code string) string {
	return lookupCode(avsCodes, code)
}

// ResultCodeText renders the processor's numeric result code.
func ResultCodeText(code string) string {
	return lookupCode(resultCodes, code)
}

func lookupCode(table map[string]string, code string) string {
	if code == "" {
		return "Not processed"
	}
	if text, ok := table[code]; ok {
		return text
	}
	return fmt.Sprintf("Unknown (%s)", code)
}
