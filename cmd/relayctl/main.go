package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"payment-relay/internal/config"
	"payment-relay/internal/models"
	"payment-relay/internal/service"
	"payment-relay/pkg/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "relayctl",
		Short:   "Operator tools for the hosted payment token relay",
		Version: Version,
	}

	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(endpointCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// tokenCmd requests one hosted payment token with the configured credentials,
// the same way the server does.
func tokenCmd() *cobra.Command {
	var (
		amount      string
		invoice     string
		customer    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Request a hosted payment page token from the configured gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			log, err := logger.New("relayctl", "development")
			if err != nil {
				return err
			}
			defer log.Sync()

			req := &models.TokenRequest{
				InvoiceNumber: models.FlexString(invoice),
				CustomerID:    models.FlexString(customer),
				Description:   description,
			}
			if amount != "" {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid --amount %q: %w", amount, err)
				}
				req.Amount = &d
			}

			gateway := service.NewAuthNetClient(cfg.AuthNet.Env.Endpoint(), cfg.AuthNet.Timeout, log)
			resp, err := service.NewTokenService(gateway, cfg, log).RequestToken(ctx, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount to authorize and capture, e.g. 10.50")
	cmd.Flags().StringVarP(&invoice, "invoice", "i", "", "Invoice number (generated when empty)")
	cmd.Flags().StringVarP(&customer, "customer", "c", "", "Customer id")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Order description")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func endpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint",
		Short: "Print the gateway endpoint selected by AUTHNET_ENV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.AuthNet.Env.Endpoint())
			return nil
		},
	}
}
