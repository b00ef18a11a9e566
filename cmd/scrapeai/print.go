package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/use-agent/scrapeai/pipeline"
	"github.com/use-agent/scrapeai/pricing"
)

// maxCellWidth truncates long cells in the terminal table.
const maxCellWidth = 60

func printResult(w io.Writer, res *pipeline.Result) error {
	if res.Table != nil {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(res.Table.Columns, "\t"))
		for _, row := range res.Table.Rows {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = truncate(c, maxCellWidth)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, "(no tabular view)")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records:       %d\n", len(res.Container.Listings))
	fmt.Fprintf(w, "Input tokens:  %d\n", res.Cost.InputTokens)
	fmt.Fprintf(w, "Output tokens: %d\n", res.Cost.OutputTokens)
	fmt.Fprintf(w, "Total cost:    $%.4f\n", res.Cost.TotalCost)
	fmt.Fprintf(w, "JSON:          %s\n", res.Files.JSON)
	if res.Files.XLSX != "" {
		fmt.Fprintf(w, "XLSX:          %s\n", res.Files.XLSX)
	}
	if res.Files.CSV != "" {
		fmt.Fprintf(w, "CSV:           %s\n", res.Files.CSV)
	}
	if res.Files.Markdown != "" {
		fmt.Fprintf(w, "Markdown:      %s\n", res.Files.Markdown)
	}
	return nil
}

func printModels(w io.Writer, table pricing.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tINPUT $/1M\tOUTPUT $/1M")
	for _, m := range table.Models() {
		r := table[m]
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\n", m, r.Input*1_000_000, r.Output*1_000_000)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
