package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conciliar/reconcile/internal/recon"
	"github.com/conciliar/reconcile/internal/report"
)

func newReportCommand() *cobra.Command {
	var dir, resultPath, format, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a result as PDF, spreadsheet and CSV summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := report.ParseFormats(format)
			if err != nil {
				return err
			}
			p, err := openProject(cmd, dir)
			if err != nil {
				return err
			}
			return runReport(cmd.OutOrStdout(), p, resultPath, out, formats)
		},
	}

	addDirFlag(cmd, &dir)
	cmd.Flags().StringVar(&resultPath, "result", "", "classifier result JSON (required)")
	cmd.Flags().StringVar(&format, "format", "all", "pdf, xlsx, csv or all")
	cmd.Flags().StringVar(&out, "out", "", "output directory (default output_dir from config)")
	_ = cmd.MarkFlagRequired("result")

	return cmd
}

func runReport(w io.Writer, p *project, resultPath, out string, formats []report.Format) error {
	res, err := recon.Load(resultPath)
	if err != nil {
		return err
	}
	if out == "" {
		out = p.cfg.OutputDir
		if !filepath.IsAbs(out) {
			out = filepath.Join(p.dir, out)
		}
	}

	exp := report.NewExporter(p.cfg.ColumnFilter(), p.log)
	arts, err := exp.Export(out, res, formats...)
	if err != nil {
		p.record("report", resultPath, "", res.RunID, err)
		return err
	}

	printSummary(w, res)
	for _, a := range arts {
		fmt.Fprintf(w, "wrote %s (%d bytes)\n", a.Path, a.Size)
	}
	p.record("report", resultPath, fmt.Sprintf("%d artifacts in %s", len(arts), out), res.RunID, nil)
	return nil
}
