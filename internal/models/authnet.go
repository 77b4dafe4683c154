package models

// Authorize.net's JSON API is validated against its XML schema, so field
// order in these structs follows the schema's element order.

const (
	TransactionTypeAuthCapture = "authCaptureTransaction"

	SettingIFrameCommunicatorURL = "hostedPaymentIFrameCommunicatorUrl"
	SettingReturnOptions         = "hostedPaymentReturnOptions"
)

type HostedPaymentPageRequest struct {
	GetHostedPaymentPageRequest HostedPaymentPageBody `json:"getHostedPaymentPageRequest"`
}

type HostedPaymentPageBody struct {
	MerchantAuthentication MerchantAuthentication `json:"merchantAuthentication"`
	TransactionRequest     TransactionRequest     `json:"transactionRequest"`
	HostedPaymentSettings  HostedPaymentSettings  `json:"hostedPaymentSettings"`
}

type MerchantAuthentication struct {
	Name           string `json:"name"`
	TransactionKey string `json:"transactionKey"`
}

type TransactionRequest struct {
	TransactionType string    `json:"transactionType"`
	Amount          string    `json:"amount"`
	Order           Order     `json:"order"`
	Customer        *Customer `json:"customer,omitempty"`
}

type Order struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Description   string `json:"description"`
}

type Customer struct {
	ID string `json:"id"`
}

type HostedPaymentSettings struct {
	Setting []Setting `json:"setting"`
}

// Setting values are themselves JSON documents encoded as strings.
type Setting struct {
	SettingName  string `json:"settingName"`
	SettingValue string `json:"settingValue"`
}

type IFrameCommunicatorOptions struct {
	URL string `json:"url"`
}

type ReturnOptions struct {
	ShowReceipt   bool   `json:"showReceipt"`
	URL           string `json:"url"`
	URLText       string `json:"urlText"`
	CancelURL     string `json:"cancelUrl"`
	CancelURLText string `json:"cancelUrlText"`
}
