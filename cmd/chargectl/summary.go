package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"chargeapi/internal/billing"
	"chargeapi/internal/repository/postgres"
	"chargeapi/internal/service"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "summary <purchase|charge> <id>",
		Short:     "Print amounts and ledger rows for a purchase or charge",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(billing.KindPurchase), string(billing.KindCharge)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := billing.ParseKind(args[0])
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()

			svc := service.NewChargeService(postgres.NewOrderPostgres(e.db), postgres.NewLedgerPostgres(e.db))
			s, err := svc.Summary(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}
}
