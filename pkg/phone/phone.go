// Package phone validates member contact numbers and builds WhatsApp chat
// links for payment and expiry reminders.
package phone

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var digitsOnly = regexp.MustCompile(`^\+?\d+$`)

// Validate checks a contact number. Accepted shapes: international with or
// without a leading + and the local 0-prefixed form, 10 to 15 digits.
func Validate(contact string) error {
	if contact == "" {
		return fmt.Errorf("phone number is required")
	}

	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(contact)
	if !digitsOnly.MatchString(cleaned) {
		return fmt.Errorf("phone number must contain only digits (and optional + prefix)")
	}

	digits := strings.TrimPrefix(cleaned, "+")
	if len(digits) < 10 {
		return fmt.Errorf("phone number must be at least 10 digits")
	}
	if len(digits) > 15 {
		return fmt.Errorf("phone number is too long (max 15 digits)")
	}
	return nil
}

// ForWhatsApp normalizes a contact number to the international form without
// the + prefix. Local 0-prefixed numbers are treated as Pakistani (92).
func ForWhatsApp(contact string) string {
	if contact == "" {
		return ""
	}

	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "").Replace(contact)
	if strings.HasPrefix(cleaned, "0") {
		cleaned = "92" + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "92") {
		cleaned = "92" + cleaned
	}
	return cleaned
}

// ChatURL builds a WhatsApp web link with an optional pre-filled message.
func ChatURL(contact, message string) (string, error) {
	if err := Validate(contact); err != nil {
		return "", err
	}
	u := url.URL{Scheme: "https", Host: "api.whatsapp.com", Path: "/send/"}
	q := url.Values{}
	q.Set("phone", ForWhatsApp(contact))
	q.Set("text", message)
	q.Set("type", "phone_number")
	q.Set("app_absent", "0")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// PaymentReminder is the reminder template used by the payments screen.
func PaymentReminder(memberName string, amount float64, dueDate string) string {
	return fmt.Sprintf("Hello %s, this is a reminder that your payment of PKR %.0f is due on %s. "+
		"Please clear your dues at your earliest convenience. Thank you!", memberName, amount, dueDate)
}

// ExpiryReminder is the renewal nudge sent to members expiring soon.
func ExpiryReminder(memberName, expiryDate string) string {
	return fmt.Sprintf("Hi %s, your gym membership expires on %s. "+
		"Please renew to continue enjoying our services. Contact us for renewal options!", memberName, expiryDate)
}
