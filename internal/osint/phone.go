// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultPhoneRegion = "US"

// LookupPhone validates and formats a phone number via the libphonenumber
// grammar. No network I/O; an unparseable or invalid number comes back with
// Valid=false rather than an error.
func (s *Service) LookupPhone(input string) *PhoneRecord {
	record := &PhoneRecord{Input: input}

	region := defaultPhoneRegion
	if strings.HasPrefix(strings.TrimSpace(input), "+") {
		region = ""
	}

	num, err := phonenumbers.Parse(input, region)
	if err != nil {
		return record
	}

	record.Valid = phonenumbers.IsValidNumber(num)
	record.E164 = phonenumbers.Format(num, phonenumbers.E164)
	record.International = phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	record.National = phonenumbers.Format(num, phonenumbers.NATIONAL)
	record.CountryCode = int(num.GetCountryCode())
	record.Region = phonenumbers.GetRegionCodeForNumber(num)
	record.NumberType = numberTypeLabel(phonenumbers.GetNumberType(num))

	if carrier, err := phonenumbers.GetCarrierForNumber(num, "en"); err == nil {
		record.Carrier = carrier
	}

	return record
}

func numberTypeLabel(t phonenumbers.PhoneNumberType) string {
	switch t {
	case phonenumbers.FIXED_LINE:
		return "fixed_line"
	case phonenumbers.MOBILE:
		return "mobile"
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return "fixed_line_or_mobile"
	case phonenumbers.TOLL_FREE:
		return "toll_free"
	case phonenumbers.PREMIUM_RATE:
		return "premium_rate"
	case phonenumbers.SHARED_COST:
		return "shared_cost"
	case phonenumbers.VOIP:
		return "voip"
	case phonenumbers.PERSONAL_NUMBER:
		return "personal_number"
	case phonenumbers.PAGER:
		return "pager"
	case phonenumbers.UAN:
		return "uan"
	case phonenumbers.VOICEMAIL:
		return "voicemail"
	default:
		return "unknown"
	}
}
