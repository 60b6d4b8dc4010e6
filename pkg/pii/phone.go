package pii

import (
	"github.com/nyaruka/phonenumbers"
)

// libPhoneValidator validates candidates with the phonenumbers grammar.
type libPhoneValidator struct {
	defaultRegion string
}

// NewPhoneValidator returns the stock PhoneValidator. defaultRegion is an
// optional ISO region hint (e.g. "US") for nationally formatted numbers;
// empty accepts only numbers with an explicit country code.
func NewPhoneValidator(defaultRegion string) PhoneValidator {
	return &libPhoneValidator{defaultRegion: defaultRegion}
}

func (v *libPhoneValidator) ParseAndValidate(candidate string) (string, bool) {
	parsed, err := phonenumbers.Parse(candidate, v.defaultRegion)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", false
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), true
}
