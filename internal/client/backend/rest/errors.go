package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/tidwall/gjson"
)

var errorCodes = map[string]backend.Code{
	"email_address_invalid":      backend.CodeInvalidEmail,
	"validation_failed":          backend.CodeInvalidEmail,
	"weak_password":              backend.CodeWeakPassword,
	"invalid_credentials":        backend.CodeInvalidCredential,
	"email_not_confirmed":        backend.CodeUnverifiedEmail,
	"user_not_found":             backend.CodeUserNotFound,
	"email_exists":               backend.CodeEmailAlreadyInUse,
	"user_already_exists":        backend.CodeEmailAlreadyInUse,
	"user_banned":                backend.CodeUserDisabled,
	"signup_disabled":            backend.CodeOperationNotAllowed,
	"email_provider_disabled":    backend.CodeOperationNotAllowed,
	"provider_disabled":          backend.CodeOperationNotAllowed,
	"over_request_rate_limit":    backend.CodeTooManyRequests,
	"over_email_send_rate_limit": backend.CodeTooManyRequests,
	"bad_jwt":                    backend.CodeInvalidCredential,
	"session_not_found":          backend.CodeInvalidCredential,
	"session_expired":            backend.CodeInvalidCredential,
	"refresh_token_not_found":    backend.CodeInvalidCredential,
	"refresh_token_already_used": backend.CodeInvalidCredential,
	"identity_already_exists":    backend.CodeCredentialAlreadyInUse,

	"email_conflict_identity_not_deletable": backend.CodeAccountExistsWithDifferentCredential,
}

// parseError turns a non-2xx response into *backend.Error.
func parseError(status int, body []byte) *backend.Error {
	res := gjson.ParseBytes(body)
	msg := firstString(res, "msg", "message", "error_description", "error")
	if msg == "" {
		msg = http.StatusText(status)
	}
	code := firstString(res, "error_code", "code")

	if c, ok := errorCodes[code]; ok {
		return backend.NewError(c, msg)
	}

	switch {
	case status == http.StatusUnauthorized && strings.Contains(strings.ToLower(msg), "api key"):
		return backend.NewError(backend.CodeInvalidAPIKey, msg)
	case status == http.StatusTooManyRequests:
		return backend.NewError(backend.CodeTooManyRequests, msg)
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return backend.NewError(backend.CodeNetworkRequestFailed, msg)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return backend.NewError(backend.CodeInvalidCredential, msg)
	}
	return backend.NewError(backend.CodeInternal, msg)
}

func firstString(res gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := res.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
