package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// TokenRequest is the browser's request for a hosted payment form.
type TokenRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	InvoiceNumber FlexString       `json:"invoiceNumber"`
	CustomerID    FlexString       `json:"customerId"`
	Description   string           `json:"description"`
}

// FlexString takes a JSON string or a JSON number. Numbers keep their literal
// text, so 1001 becomes "1001". null leaves it empty.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	switch r.Type {
	case gjson.String:
		*s = FlexString(r.Str)
	case gjson.Number:
		*s = FlexString(r.Raw)
	case gjson.Null:
		*s = ""
	default:
		return fmt.Errorf("expected a string or a number, got %s", b)
	}
	return nil
}

type TokenResponse struct {
	Token   string `json:"token"`
	Invoice string `json:"invoice,omitempty"`
}

// Diagnostic is what the gateway said about a failed request, relayed as is.
type Diagnostic struct {
	ResultCode   string   `json:"resultCode"`
	MessageCodes []string `json:"messageCodes"`
	MessageText  []string `json:"messageText"`
}

type ErrorResponse struct {
	Error string      `json:"error"`
	ANet  *Diagnostic `json:"anet,omitempty"`
	Hint  string      `json:"hint,omitempty"`
}
