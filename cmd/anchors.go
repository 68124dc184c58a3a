package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nvr-ai/visioncore/models/blazeface"
	"github.com/spf13/cobra"
)

var anchorsJSON bool

var anchorsCmd = &cobra.Command{
	Use:   "anchors",
	Short: "Print the BlazeFace anchor table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		anchors, err := blazeface.Anchors()
		if err != nil {
			return err
		}
		if anchorsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(anchors)
		}
		return printAnchorSummary(cmd.OutOrStdout(), anchors)
	},
}

func init() {
	anchorsCmd.Flags().BoolVar(&anchorsJSON, "json", false, "Print every anchor as JSON")
	rootCmd.AddCommand(anchorsCmd)
}

// printAnchorSummary prints one row per distinct anchor size.
func printAnchorSummary(out io.Writer, anchors []blazeface.Anchor) error {
	type row struct {
		size  float32
		first int
		count int
	}
	var rows []row
	for i, a := range anchors {
		found := false
		for j := range rows {
			if rows[j].size == a.Height {
				rows[j].count++
				found = true
				break
			}
		}
		if !found {
			rows = append(rows, row{size: a.Height, first: i, count: 1})
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SIZE\tPIXELS\tFIRST INDEX\tCOUNT\n")
	for _, r := range rows {
		fmt.Fprintf(w, "%.5f\t%.0f\t%d\t%d\n", r.size, r.size*blazeface.InputSize, r.first, r.count)
	}
	fmt.Fprintf(w, "total\t\t\t%d\n", len(anchors))
	return w.Flush()
}
