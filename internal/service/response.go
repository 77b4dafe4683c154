package service

import (
	"github.com/tidwall/gjson"

	"payment-relay/internal/models"
)

const envelope = "getHostedPaymentPageResponse"

// extractToken returns the first non-empty token at the top level or inside
// the response envelope.
func extractToken(body []byte) string {
	for _, path := range []string{"token", envelope + ".token"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// extractDiagnostic collects whatever result code and messages the gateway
// sent. The message list may be an array or a single object.
func extractDiagnostic(body []byte) models.Diagnostic {
	diag := models.Diagnostic{
		MessageCodes: []string{},
		MessageText:  []string{},
	}

	messages := gjson.GetBytes(body, "messages")
	if !messages.Exists() {
		messages = gjson.GetBytes(body, envelope+".messages")
	}
	if !messages.Exists() {
		return diag
	}

	diag.ResultCode = messages.Get("resultCode").String()
	for _, m := range messages.Get("message").Array() {
		if code := m.Get("code"); code.Exists() {
			diag.MessageCodes = append(diag.MessageCodes, code.String())
		}
		if text := m.Get("text"); text.Exists() {
			diag.MessageText = append(diag.MessageText, text.String())
		}
	}

	return diag
}
