package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ArteenM/File-Sharing/internal/config"
	"github.com/ArteenM/File-Sharing/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "show past transfers",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("history")

		transfers, err := listHistory(cmd.Context(), path)
		if err != nil {
			return err
		}
		if len(transfers) == 0 {
			fmt.Println("no transfers recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tDIR\tPEER\tFILE\tBYTES\tMB/S\tP95 MS\tSTATUS")
		for _, t := range transfers {
			when := time.Unix(t.StartedAt, 0).Format("2006-01-02 15:04:05")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f\t%.1f\t%s\n",
				when, t.Direction, t.PeerID, t.FileName, t.Bytes, t.ThroughputMBps, t.P95LatencyMs, t.Status)
		}
		return w.Flush()
	},
}

func listHistory(ctx context.Context, path string) ([]store.Transfer, error) {
	history, err := store.NewTransferStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return history.List(ctx)
}

func init() {
	historyCmd.Flags().String("history", config.Default().HistoryPath, "transfer history database path")
}
