package threeds

import (
	// Local Packages
	models "nmi-gateway/models"
)

// FilterEvidence narrows a browser-supplied field map down to the evidence
// fields the request builder may forward. Only non-empty string values
// survive; nulls, numbers, arrays and objects are dropped silently. This is
// a deliberate defensive filter at the boundary with an untrusted payload,
// not an error path.
func FilterEvidence(fields map[string]any) models.ThreeDSEvidence {
	return models.ThreeDSEvidence{
		Cavv:              stringField(fields, "cavv"),
		Xid:               stringField(fields, "xid"),
		Eci:               stringField(fields, "eci"),
		CardholderAuth:    stringField(fields, "cardholder_auth", "cardHolderAuth"),
		ThreeDSVersion:    stringField(fields, "three_ds_version", "threeDsVersion"),
		DirectoryServerID: stringField(fields, "directory_server_id", "directoryServerId"),
		CardholderInfo:    stringField(fields, "cardholder_info", "cardHolderInfo"),
	}
}

// stringField returns the first key present with a non-empty string value.
// Providers emit camelCase, the form contract snake_case; both are accepted.
func stringField(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
