package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    FlexString
		wantErr bool
	}{
		{name: "string", in: `"INV-1001"`, want: "INV-1001"},
		{name: "escaped string", in: `"A\u00e9B"`, want: "AéB"},
		{name: "integer", in: `1001`, want: "1001"},
		{name: "decimal", in: `12.5`, want: "12.5"},
		{name: "null", in: `null`, want: ""},
		{name: "boolean", in: `true`, wantErr: true},
		{name: "object", in: `{"id":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexString
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTokenRequestAcceptsNumericIdentifiers(t *testing.T) {
	var req TokenRequest
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"10","invoiceNumber":1001,"customerId":12345}`), &req))

	require.Equal(t, FlexString("1001"), req.InvoiceNumber)
	require.Equal(t, FlexString("12345"), req.CustomerID)
	require.Equal(t, "10", req.Amount.String())
}
