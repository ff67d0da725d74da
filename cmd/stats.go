package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recent LLM request activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := db.EventRepo().RecentLLMRequests(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No LLM requests recorded yet")
			return nil
		}

		var totalCost float64
		for _, ev := range events {
			status := "ok"
			if !ev.Success {
				status = "failed"
			}
			fmt.Printf("%s  %-10s %-24s %-14s in=%-6d out=%-6d %6dms  $%.5f  %s\n",
				ev.Timestamp.Format("2006-01-02 15:04:05"),
				ev.Provider, ev.Model, ev.Purpose,
				ev.InputTokens, ev.OutputTokens, ev.LatencyMs, ev.CostUSD, status)
			totalCost += ev.CostUSD
		}
		fmt.Printf("\n%d requests, $%.5f total\n", len(events), totalCost)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 50, "Maximum number of requests to show")
}
