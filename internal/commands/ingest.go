package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conciliar/reconcile/internal/ingest"
	"github.com/conciliar/reconcile/internal/model"
	"github.com/conciliar/reconcile/internal/statement"
)

func newIngestCommand() *cobra.Command {
	var (
		dir    string
		bank   string
		layout string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "ingest <file|directory>",
		Short: "Convert statement or ledger exports to canonical transaction CSV",
		Long: "Reads the first sheet of each file with the layout registered for --bank and --layout\n" +
			"and writes canonical CSV. A directory input converts every supported file in it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, dir)
			if err != nil {
				return err
			}
			return runIngest(cmd.OutOrStdout(), p, args[0], model.NewSelector(bank, layout), out)
		},
	}

	addDirFlag(cmd, &dir)
	cmd.Flags().StringVar(&bank, "bank", "", "institution, e.g. bfa, bai or ledger (required)")
	cmd.Flags().StringVar(&layout, "layout", "column", "layout: column (coluna) or row (linha)")
	cmd.Flags().StringVar(&out, "out", "", "output file, or output directory for a directory input (default <dir>/statements)")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}

func runIngest(w io.Writer, p *project, input string, sel model.Selector, out string) error {
	reg, err := p.cfg.Registry()
	if err != nil {
		return fmt.Errorf("loading layouts: %w", err)
	}
	in := ingest.New(reg, p.log)

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var files []string
	outDir := filepath.Join(p.dir, "statements")
	if info.IsDir() {
		found, err := ingest.Scan(input)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no supported files in %s", input)
		}
		for _, f := range found {
			files = append(files, f.Path)
		}
		if out != "" {
			outDir = out
		}
		out = ""
	} else {
		files = []string{input}
	}

	for _, file := range files {
		target := out
		if target == "" {
			target = filepath.Join(outDir, canonicalName(file))
		}
		if err := ingestFile(w, p, in, file, sel, target); err != nil {
			return err
		}
	}
	return nil
}

func ingestFile(w io.Writer, p *project, in *ingest.Ingestor, file string, sel model.Selector, target string) error {
	res, err := in.Ingest(file, sel)
	if err != nil {
		p.record("ingest", file, "", "", err)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := statement.Save(target, res.Transactions); err != nil {
		p.record("ingest", file, "", "", err)
		return err
	}

	summary := fmt.Sprintf("%s: %d transactions, %d skipped", res.Selector, len(res.Transactions), res.Skipped())
	fmt.Fprintf(w, "%s -> %s (%s)\n", file, target, summary)
	for _, issue := range res.Issues {
		fmt.Fprintf(w, "  %s\n", issue)
	}
	p.record("ingest", file, summary, "", nil)
	return nil
}

func canonicalName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".csv"
}
