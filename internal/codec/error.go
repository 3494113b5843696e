package codec

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// FormatAPIError formats an error response from the Chorus backend.
func FormatAPIError(statusCode int, rawBody []byte) string {
	status := fmt.Sprintf("%d", statusCode)
	if text := http.StatusText(statusCode); text != "" {
		status = fmt.Sprintf("%d %s", statusCode, text)
	}
	if msg := ExtractErrorMessage(rawBody); msg != "" {
		return fmt.Sprintf("backend returned HTTP %s: %s", status, msg)
	}
	if preview := compactBodyPreview(rawBody, 280); preview != "" {
		return fmt.Sprintf("backend returned HTTP %s with unparsed body: %s", status, preview)
	}
	return fmt.Sprintf("backend returned HTTP %s with empty error body", status)
}

// FormatAPIErrorWithHeaders includes the request ID in the error.
func FormatAPIErrorWithHeaders(statusCode int, rawBody []byte, headers http.Header) string {
	msg := FormatAPIError(statusCode, rawBody)
	reqID := RequestID(headers)
	if reqID == "" {
		return msg
	}
	return fmt.Sprintf("%s (request_id: %s)", msg, reqID)
}

// ExtractErrorMessage extracts the error message from an error body.
// The backend answers {"error": "..."}; nested and list forms are accepted too.
func ExtractErrorMessage(rawBody []byte) string {
	trimmed := strings.TrimSpace(string(rawBody))
	if trimmed == "" || !gjson.Valid(trimmed) {
		return ""
	}
	return extractErrorMessage(gjson.Parse(trimmed))
}

func extractErrorMessage(payload gjson.Result) string {
	if !payload.IsObject() {
		return ""
	}
	if v := payload.Get("error"); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
		return strings.TrimSpace(v.Str)
	}
	for _, key := range []string{"message", "detail", "error_description", "title", "reason"} {
		if v := payload.Get(key); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return strings.TrimSpace(v.Str)
		}
	}
	if nested := payload.Get("error"); nested.IsObject() {
		if msg := extractErrorMessage(nested); msg != "" {
			return msg
		}
	}
	if list := payload.Get("errors"); list.IsArray() {
		for _, item := range list.Array() {
			if item.Type == gjson.String && strings.TrimSpace(item.Str) != "" {
				return strings.TrimSpace(item.Str)
			}
			if msg := extractErrorMessage(item); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func compactBodyPreview(rawBody []byte, maxLen int) string {
	trimmed := strings.TrimSpace(string(rawBody))
	if trimmed == "" {
		return ""
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	if len(clean) <= maxLen {
		return clean
	}
	return clean[:maxLen] + "..."
}

// RequestID returns the request identifier echoed by the backend or a proxy
// in front of it.
func RequestID(headers http.Header) string {
	if headers == nil {
		return ""
	}
	for _, key := range []string{"x-request-id", "request-id", "cf-ray"} {
		if v := strings.TrimSpace(headers.Get(key)); v != "" {
			return v
		}
	}
	return ""
}
