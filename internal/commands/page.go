package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conciliar/reconcile/internal/model"
	"github.com/conciliar/reconcile/internal/recon"
	"github.com/conciliar/reconcile/internal/report"
)

func newPageCommand() *cobra.Command {
	var (
		dir        string
		resultPath string
		bucket     string
		page       int
		size       int
		format     string
	)

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Show one page of a result bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := model.ParseBucket(bucket)
			if err != nil {
				return err
			}
			p, err := openProject(cmd, dir)
			if err != nil {
				return err
			}
			return runPage(cmd.OutOrStdout(), p, resultPath, b, page, size, format)
		},
	}

	addDirFlag(cmd, &dir)
	cmd.Flags().StringVar(&resultPath, "result", "", "classifier result JSON (required)")
	cmd.Flags().StringVar(&bucket, "bucket", "matched", "matched, amount_mismatch, statement_only or ledger_only")
	cmd.Flags().IntVar(&page, "page", 1, "page number, clamped to the available pages")
	cmd.Flags().IntVar(&size, "size", 0, "page size (default page_size from config)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or csv")
	_ = cmd.MarkFlagRequired("result")

	return cmd
}

func runPage(w io.Writer, p *project, resultPath string, b model.Bucket, page, size int, format string) error {
	res, err := recon.Load(resultPath)
	if err != nil {
		return err
	}
	store := recon.NewStore(p.cfg.PageSize)
	store.Replace(res)

	pg, err := report.DisplayPage(store, b, page, size, p.cfg.ColumnFilter())
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "csv":
		return report.WriteTableCSV(w, pg.Table)
	case "text", "":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	fmt.Fprintf(w, "%s: page %d of %d (%d entries)\n", b.Label(), pg.Window.Page, max(pg.Window.TotalPages, 1), pg.Window.Total)
	if len(pg.Items) == 0 {
		fmt.Fprintln(w, "No entries.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if b.IsPaired() {
		fmt.Fprintln(tw, "STATEMENT\tLEDGER\tSTATUS")
		for _, it := range pg.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", it.StatementDescription, it.LedgerDescription, it.Status)
		}
	} else {
		fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tNET")
		for _, it := range pg.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Record.ID, it.Record.Date, it.Record.Description, it.Net.StringFixed(2))
		}
	}
	return tw.Flush()
}
