package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/psantana5/timeprofile/pkg/models"
	"github.com/psantana5/timeprofile/pkg/sink"
)

var (
	tailInterval time.Duration
	brokenOnly   bool
)

// rowsCmd represents the rows command
var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Inspect recorded rows",
	Long:  `Commands for rendering and following the rows recorded in the shared result file.`,
}

var rowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded rows",
	Long:  `Render every row currently in the result file as a table or JSON.`,
	RunE:  runRowsList,
}

var rowsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow rows as they are appended",
	Long:  `Print rows as concurrent writers append them, polling the result file.`,
	RunE:  runRowsTail,
}

func init() {
	rootCmd.AddCommand(rowsCmd)
	rowsCmd.AddCommand(rowsListCmd)
	rowsCmd.AddCommand(rowsTailCmd)

	rowsListCmd.Flags().BoolVar(&brokenOnly, "broken", false, "only rows from broken measurements")
	rowsTailCmd.Flags().DurationVar(&tailInterval, "interval", time.Second, "poll interval")
}

func runRowsList(cmd *cobra.Command, args []string) error {
	s := sink.NewCSVSink(GetResultPath(), lockTimeout)
	rows, err := s.ReadRows()
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	if brokenOnly {
		filtered := rows[:0]
		for _, row := range rows {
			if row.Broken {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if IsJSONOutput() {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Printf("No rows recorded in %s\n", s.Path())
		return nil
	}

	renderRowsTable(rows)
	fmt.Printf("\nTotal: %d rows\n", len(rows))
	return nil
}

func renderRowsTable(rows []models.Row) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Seconds", "PID", "PPID", "Process", "Broken", "Error")

	for _, row := range rows {
		errInfo := ""
		if row.Broken {
			errInfo = row.ErrorType
			if row.ErrorValue != "" {
				errInfo = fmt.Sprintf("%s: %s", row.ErrorType, row.ErrorValue)
			}
		}
		table.Append([]string{
			row.ID,
			fmt.Sprintf("%.5f", row.Seconds),
			fmt.Sprintf("%d", row.PID),
			fmt.Sprintf("%d", row.PPID),
			row.ProcessName,
			fmt.Sprintf("%t", row.Broken),
			errInfo,
		})
	}

	table.Render()
}

func runRowsTail(cmd *cobra.Command, args []string) error {
	s := sink.NewCSVSink(GetResultPath(), lockTimeout)
	fmt.Printf("Following %s (interval %s, Ctrl+C to stop)\n", s.Path(), tailInterval)

	seen := 0
	for {
		rows, err := s.ReadRows()
		if err != nil {
			return fmt.Errorf("failed to read rows: %w", err)
		}

		for _, row := range rows[min(seen, len(rows)):] {
			if IsJSONOutput() {
				data, _ := json.Marshal(row)
				fmt.Println(string(data))
			} else {
				flag := ""
				if row.Broken {
					flag = " (broken)"
				}
				fmt.Printf("%-30s %.5fs pid=%d%s\n", row.ID, row.Seconds, row.PID, flag)
			}
		}
		if len(rows) > seen {
			seen = len(rows)
		}

		time.Sleep(tailInterval)
	}
}
