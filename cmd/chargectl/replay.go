package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"chargeapi/internal/clock"
	"chargeapi/internal/processor"
	"chargeapi/internal/repository/postgres"
	"chargeapi/internal/service"
)

func replayCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "replay <file>...",
		Short: "Re-apply stored processor events",
		Long: `Replay normalized charge events through reconciliation.

Each file holds a JSON array of events, or one event per line.
Events already applied are reported as duplicates and change nothing.

Examples:
  chargectl replay events.json
  chargectl replay --workers 8 day1.jsonl day2.jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := readEventFiles(args)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()

			if !cmd.Flags().Changed("workers") {
				workers = e.cfg.Replay.Workers
			}

			orders := postgres.NewOrderPostgres(e.db)
			svc := service.NewReconciliationService(service.Repositories{
				Tx:       postgres.NewTransactor(e.db),
				Orders:   orders,
				Disputes: postgres.NewDisputePostgres(e.db),
				Refunds:  postgres.NewRefundPostgres(e.db),
				Ledger:   postgres.NewLedgerPostgres(e.db),
				Events:   postgres.NewEventPostgres(e.db),
			}, clock.System(), e.log, nil)

			report, replayErr := service.NewReplayer(svc, workers, e.log).Replay(cmd.Context(), events)
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			}
			return replayErr
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent workers (defaults to REPLAY_WORKERS)")
	return cmd
}

func readEventFiles(paths []string) ([]processor.ChargeEvent, error) {
	var all []processor.ChargeEvent
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		events, err := decodeEvents(b)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		all = append(all, events...)
	}
	return all, nil
}

// decodeEvents accepts a JSON array or a stream of JSON objects.
func decodeEvents(b []byte) ([]processor.ChargeEvent, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var events []processor.ChargeEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, err
		}
		return events, nil
	}

	var events []processor.ChargeEvent
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var ev processor.ChargeEvent
		err := dec.Decode(&ev)
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}
