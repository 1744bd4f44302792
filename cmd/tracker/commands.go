package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	showChart    bool
	historyLimit int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the market once and print the vendor list as JSON",
	RunE:  runSnapshot,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch the market once and print the AI recommendation as JSON",
	Long: `Fetches a snapshot and asks Gemini for a BUY/WAIT verdict. Any analysis
failure prints the NEUTRAL fallback; the command still succeeds.`,
	RunE: runAnalyze,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analyses, newest first",
	RunE:  runHistory,
}

func init() {
	snapshotCmd.Flags().BoolVar(&showChart, "chart", false, "Print the merged per-day price series instead")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of analyses to list")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.svc.Refresh(ctx); err != nil {
		return err
	}
	if showChart {
		rows, err := a.svc.Chart()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), rows)
	}
	list, err := a.svc.Competitors()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), list)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.svc.Refresh(ctx); err != nil {
		return err
	}
	result, err := a.svc.Analyze(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.sqlite == nil {
		return errNoHistory
	}

	events, err := a.sqlite.RecentAnalyses(historyLimit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOUTCOME\tVERDICT\tMODEL\tDURATION\tBEST DEAL")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04"), e.Outcome, e.Result.Recommendation,
			e.Model, e.Duration, e.Result.BestDeal)
	}
	return w.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
