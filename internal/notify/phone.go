package notify

import "strings"

// NormalizeRecipient strips everything but digits and prefixes the country
// code. A number that already starts with the code and is longer than a bare
// ten-digit national number is left as is.
func NormalizeRecipient(phone, countryCode string) string {
	digits := digitsOnly(phone)
	if digits == "" {
		return ""
	}
	cc := digitsOnly(countryCode)
	if cc == "" {
		return digits
	}
	if strings.HasPrefix(digits, cc) && len(digits) > 10 {
		return digits
	}
	return cc + digits
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
