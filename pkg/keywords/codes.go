package keywords

import (
	"errors"

	"kokocares/keywords/pkg/config"
	"kokocares/keywords/pkg/rules"
	"kokocares/keywords/pkg/rules/filter"
	"kokocares/keywords/pkg/rules/source"
)

// Code is the stable integer result of a match call.
type Code int

// Result codes. The values are part of the public contract.
const (
	CodeNotMatched         Code = 0
	CodeMatched            Code = 1
	CodeAuthMissing        Code = -1
	CodeInvalidCredentials Code = -2
	CodeRefreshUnavailable Code = -3
	CodeParseError         Code = -4
	CodeInvalidURL         Code = -5
	CodeInvalidFilter      Code = -6
)

// Description returns the user facing message for the code.
func (c Code) Description() string {
	switch c {
	case CodeNotMatched:
		return "No keyword matched."
	case CodeMatched:
		return "A keyword matched."
	case CodeAuthMissing:
		return "KOKO_KEYWORDS_AUTH or KOKO_KEYWORDS_URL must be set"
	case CodeInvalidCredentials:
		return "Invalid credentials. Please confirm you are using valid credentials, contact us at api.kokocares.org if you need assistance."
	case CodeRefreshUnavailable:
		return "Unable to refresh cache. Please try again or contact us at api.kokocares.org if this issue persists."
	case CodeParseError:
		return "Unable to parse response from API. Please contact us at api.kokocares.org if this issue persists."
	case CodeInvalidURL:
		return "Invalid url. Please ensure the url used is valid."
	case CodeInvalidFilter:
		return "Invalid filter. Filters look like \"category=suicide,selfharm:severity=high\"."
	default:
		return "Unknown result code."
	}
}

// String returns the code's name, as used in metric labels and logs.
func (c Code) String() string {
	switch c {
	case CodeNotMatched:
		return "not_matched"
	case CodeMatched:
		return "matched"
	case CodeAuthMissing:
		return "auth_missing"
	case CodeInvalidCredentials:
		return "invalid_credentials"
	case CodeRefreshUnavailable:
		return "refresh_unavailable"
	case CodeParseError:
		return "parse_error"
	case CodeInvalidURL:
		return "invalid_url"
	case CodeInvalidFilter:
		return "invalid_filter"
	default:
		return "unknown"
	}
}

// IsError reports whether the code signals a failure.
func (c Code) IsError() bool {
	return c < 0
}

// CodeOf maps an error returned by this module to its result code.
// A nil error maps to CodeNotMatched; unrecognised errors map to
// CodeRefreshUnavailable.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeNotMatched
	case errors.Is(err, filter.ErrSyntax):
		return CodeInvalidFilter
	case errors.Is(err, config.ErrConfiguration), errors.Is(err, ErrNotConfigured):
		return CodeAuthMissing
	case errors.Is(err, source.ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, source.ErrInvalidURL):
		return CodeInvalidURL
	case errors.Is(err, rules.ErrInvalidPayload):
		return CodeParseError
	default:
		return CodeRefreshUnavailable
	}
}

// Result folds a match outcome into a single code.
func Result(matched bool, err error) Code {
	if err != nil {
		return CodeOf(err)
	}
	if matched {
		return CodeMatched
	}
	return CodeNotMatched
}
