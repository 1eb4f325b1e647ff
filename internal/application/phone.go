package application

import "strings"

// phoneSeparators are the characters the phone validator tolerates between
// digits.
var phoneSeparators = strings.NewReplacer("-", "", "(", "", ")", "")

// NormalizePhone gives every phone number one canonical form: whitespace and
// separators are stripped, a leading trunk "0" becomes "+<cc>", and a bare
// "<cc>..." gains its "+".
func NormalizePhone(raw, countryCode string) string {
	p := phoneSeparators.Replace(strings.Join(strings.Fields(raw), ""))
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "+"):
		return p
	case strings.HasPrefix(p, "0"):
		return "+" + countryCode + p[1:]
	case countryCode != "" && strings.HasPrefix(p, countryCode):
		return "+" + p
	}
	return p
}

// NormalizeEmail lower-cases and trims.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeIdentifier treats anything with an "@" as an email and the rest
// as a phone number.
func NormalizeIdentifier(raw, countryCode string) string {
	if strings.Contains(raw, "@") {
		return NormalizeEmail(raw)
	}
	return NormalizePhone(raw, countryCode)
}
