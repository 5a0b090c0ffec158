package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conciliar/reconcile/internal/model"
	"github.com/conciliar/reconcile/internal/recon"
	"github.com/conciliar/reconcile/internal/statement"
)

func newValidateCommand() *cobra.Command {
	var dir, resultPath, stmtPath, ledgerPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a classifier result partitions the ingested records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, dir)
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), p, resultPath, stmtPath, ledgerPath)
		},
	}

	addDirFlag(cmd, &dir)
	cmd.Flags().StringVar(&resultPath, "result", "", "classifier result JSON (required)")
	cmd.Flags().StringVar(&stmtPath, "statement", "", "canonical statement CSV (required)")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "canonical ledger CSV (required)")
	_ = cmd.MarkFlagRequired("result")
	_ = cmd.MarkFlagRequired("statement")
	_ = cmd.MarkFlagRequired("ledger")

	return cmd
}

func runValidate(w io.Writer, p *project, resultPath, stmtPath, ledgerPath string) error {
	res, err := recon.Load(resultPath)
	if err != nil {
		return err
	}
	stmt, err := statement.Load(stmtPath)
	if err != nil {
		return fmt.Errorf("statement: %w", err)
	}
	ledger, err := statement.Load(ledgerPath)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	printSummary(w, res)
	errs := recon.Validate(res, statement.IDs(stmt), statement.IDs(ledger))
	for _, e := range errs {
		fmt.Fprintf(w, "  %s\n", e)
		p.log.Error().
			Str("side", string(e.Side)).
			Strs("missing", e.Missing).
			Strs("duplicated", e.Duplicated).
			Strs("unknown", e.Unknown).
			Msg("partition check failed")
	}
	if len(errs) > 0 {
		err := fmt.Errorf("result %s is not a partition of %d statement and %d ledger records", res.RunID, len(stmt), len(ledger))
		p.record("validate", resultPath, fmt.Sprintf("%d sides failed", len(errs)), res.RunID, err)
		return err
	}

	fmt.Fprintf(w, "OK: %d statement and %d ledger records, each in exactly one bucket\n", len(stmt), len(ledger))
	p.record("validate", resultPath, "partition ok", res.RunID, nil)
	return nil
}

func printSummary(w io.Writer, r *model.Result) {
	sum := r.Summarize()
	fmt.Fprintf(w, "Run %s\n", r.RunID)
	for _, b := range model.Buckets() {
		fmt.Fprintf(w, "  %-16s %d\n", b.Label(), sum.Counts[b])
	}
}
