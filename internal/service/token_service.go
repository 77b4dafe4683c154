package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"payment-relay/internal/config"
	"payment-relay/internal/models"
)

const defaultDescription = "Payment"

var tracer = otel.Tracer("payment-relay/internal/service")

type TokenService struct {
	gateway        Gateway
	credentials    config.Credentials
	hostedPage     config.HostedPage
	environment    config.Environment
	requireInvoice bool
	invoices       *InvoiceGenerator
	logger         *zap.Logger
}

// NewTokenService copies what it needs out of cfg; later changes to cfg are
// not seen.
func NewTokenService(gateway Gateway, cfg *config.Config, logger *zap.Logger) *TokenService {
	return &TokenService{
		gateway:        gateway,
		credentials:    cfg.AuthNet.Credentials,
		hostedPage:     cfg.HostedPage,
		environment:    cfg.AuthNet.Env,
		requireInvoice: cfg.RequireInvoiceNumber,
		invoices:       NewInvoiceGenerator(cfg.InvoicePrefix),
		logger:         logger,
	}
}

// RequestToken validates req, asks the gateway for a hosted payment page and
// returns its token together with the invoice number that was sent.
func (s *TokenService) RequestToken(ctx context.Context, req *models.TokenRequest) (*models.TokenResponse, error) {
	ctx, span := tracer.Start(ctx, "TokenService.RequestToken")
	defer span.End()

	resp, err := s.requestToken(ctx, req)

	outcome := outcomeFor(err)
	tokenRequests.WithLabelValues(outcome).Inc()
	span.SetAttributes(
		attribute.String("relay.outcome", outcome),
		attribute.String("authnet.environment", string(s.environment)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	return resp, err
}

func (s *TokenService) requestToken(ctx context.Context, req *models.TokenRequest) (*models.TokenResponse, error) {
	amount, err := formatAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	if s.requireInvoice && strings.TrimSpace(string(req.InvoiceNumber)) == "" {
		return nil, &ValidationError{Field: "invoiceNumber", Message: "amount and invoiceNumber are required"}
	}

	invoice := s.invoices.Resolve(string(req.InvoiceNumber))

	payload, err := s.buildPayload(amount, invoice, req)
	if err != nil {
		return nil, err
	}

	body, err := s.gateway.GetHostedPaymentPage(ctx, payload)
	if err != nil {
		return nil, err
	}

	token := extractToken(body)
	if token == "" {
		diag := extractDiagnostic(body)
		s.logger.Warn("no token in gateway response",
			zap.String("invoice", invoice),
			zap.String("result_code", diag.ResultCode),
			zap.Strings("message_codes", diag.MessageCodes),
			zap.Strings("message_text", diag.MessageText))
		return nil, &GatewayProtocolError{Diagnostic: diag}
	}

	s.logger.Info("hosted payment token issued",
		zap.String("invoice", invoice),
		zap.String("amount", amount),
		zap.String("environment", string(s.environment)))

	return &models.TokenResponse{Token: token, Invoice: invoice}, nil
}

// formatAmount rounds to cents and renders exactly two decimals.
func formatAmount(amount *decimal.Decimal) (string, error) {
	if amount == nil {
		return "", &ValidationError{Field: "amount", Message: "amount is required"}
	}

	rounded := amount.Round(2)
	if !rounded.IsPositive() {
		return "", &ValidationError{Field: "amount", Message: "amount must be greater than 0"}
	}

	return rounded.StringFixed(2), nil
}

func (s *TokenService) buildPayload(amount, invoice string, req *models.TokenRequest) (*models.HostedPaymentPageRequest, error) {
	description := truncate(req.Description, maxDescriptionLength)
	if strings.TrimSpace(description) == "" {
		description = defaultDescription
	}

	txn := models.TransactionRequest{
		TransactionType: models.TransactionTypeAuthCapture,
		Amount:          amount,
		Order: models.Order{
			InvoiceNumber: invoice,
			Description:   description,
		},
	}
	if customerID := strings.TrimSpace(string(req.CustomerID)); customerID != "" {
		txn.Customer = &models.Customer{ID: customerID}
	}

	communicator, err := encodeSetting(models.IFrameCommunicatorOptions{URL: s.hostedPage.CommunicatorURL})
	if err != nil {
		return nil, err
	}

	returnOptions, err := encodeSetting(models.ReturnOptions{
		ShowReceipt:   false,
		URL:           s.hostedPage.ReturnURL,
		URLText:       "Continue",
		CancelURL:     s.hostedPage.CancelURL,
		CancelURLText: "Cancel",
	})
	if err != nil {
		return nil, err
	}

	return &models.HostedPaymentPageRequest{
		GetHostedPaymentPageRequest: models.HostedPaymentPageBody{
			MerchantAuthentication: models.MerchantAuthentication{
				Name:           s.credentials.APILoginID,
				TransactionKey: s.credentials.TransactionKey,
			},
			TransactionRequest: txn,
			HostedPaymentSettings: models.HostedPaymentSettings{
				Setting: []models.Setting{
					{SettingName: models.SettingIFrameCommunicatorURL, SettingValue: communicator},
					{SettingName: models.SettingReturnOptions, SettingValue: returnOptions},
				},
			},
		},
	}, nil
}

func encodeSetting(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode hosted payment setting: %w", err)
	}
	return string(b), nil
}

func outcomeFor(err error) string {
	var (
		validationErr *ValidationError
		protocolErr   *GatewayProtocolError
		transportErr  *TransportError
	)

	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &validationErr):
		return outcomeValidation
	case errors.As(err, &protocolErr):
		return outcomeNoToken
	case errors.As(err, &transportErr):
		return outcomeTransport
	default:
		return outcomeInternalError
	}
}
