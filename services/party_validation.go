package services

import (
	"regexp"
	"strings"
)

var (
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// GSTStates maps GST state codes to state names.
var GSTStates = map[string]string{
	"01": "Jammu and Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"04": "Chandigarh",
	"05": "Uttarakhand",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"11": "Sikkim",
	"12": "Arunachal Pradesh",
	"13": "Nagaland",
	"14": "Manipur",
	"15": "Mizoram",
	"16": "Tripura",
	"17": "Meghalaya",
	"18": "Assam",
	"19": "West Bengal",
	"20": "Jharkhand",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"26": "Dadra and Nagar Haveli and Daman and Diu",
	"27": "Maharashtra",
	"29": "Karnataka",
	"30": "Goa",
	"31": "Lakshadweep",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"34": "Puducherry",
	"35": "Andaman and Nicobar Islands",
	"36": "Telangana",
	"37": "Andhra Pradesh",
	"38": "Ladakh",
	"97": "Other Territory",
}

// ValidateGSTIN validates a GSTIN (15-character alphanumeric).
func ValidateGSTIN(gstin string) bool {
	gstin = strings.TrimSpace(strings.ToUpper(gstin))
	if gstin == "" {
		return true
	}
	return len(gstin) == 15 && gstinPattern.MatchString(gstin)
}

// ValidateEmail validates an email address format.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return true
	}
	return emailPattern.MatchString(email)
}

// ValidateStateCode reports whether code is a known GST state code. Empty
// is valid (tax mode then falls back to intra-state).
func ValidateStateCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return true
	}
	_, ok := GSTStates[code]
	return ok
}

// StateCodeFromGSTIN returns the two-digit state prefix of a valid GSTIN,
// or "" when the GSTIN is empty or malformed.
func StateCodeFromGSTIN(gstin string) string {
	gstin = strings.TrimSpace(strings.ToUpper(gstin))
	if gstin == "" || !ValidateGSTIN(gstin) {
		return ""
	}
	return gstin[:2]
}

// StateName returns "27 - Maharashtra" style labels for display.
func StateName(code string) string {
	if name, ok := GSTStates[code]; ok {
		return code + " - " + name
	}
	return code
}

// ValidatePartyFields validates the GST-relevant fields of a project or
// supplier and returns a map of field -> error message for any violations.
// Recognised keys: gstin, state_code, email.
func ValidatePartyFields(fields map[string]string) map[string]string {
	errors := make(map[string]string)

	gstin := fields["gstin"]
	if gstin != "" && !ValidateGSTIN(gstin) {
		errors["gstin"] = "Invalid GSTIN format (expected: 15-character, e.g., 27AAPFU0939F1ZV)"
	}
	if v := fields["state_code"]; !ValidateStateCode(v) {
		errors["state_code"] = "Unknown GST state code"
	} else if prefix := StateCodeFromGSTIN(gstin); v != "" && prefix != "" && prefix != strings.TrimSpace(v) {
		errors["state_code"] = "State code does not match GSTIN (" + prefix + ")"
	}
	if v := fields["email"]; v != "" && !ValidateEmail(v) {
		errors["email"] = "Invalid email format"
	}

	return errors
}
