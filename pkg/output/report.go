package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/sdejongh/globsync/pkg/models"
)

// PlanRow is one planned action as shown by WritePlanTable
type PlanRow struct {
	Destination string
	Action      models.Action
	From        string
	To          string
}

// WritePlanTable writes planned actions as an aligned table
func WritePlanTable(w io.Writer, rows []PlanRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "Nothing to do.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Destination", "Action", "From", "To"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, row := range rows {
		table.Append([]string{row.Destination, string(row.Action), row.From, row.To})
	}

	table.Render()
	return nil
}

// WriteActionsReport writes every copied, removed and failed action of
// report to a file. Format can be "human" or "json". Skipped files are left
// out; nothing is written when no action ran.
func WriteActionsReport(report *models.SyncReport, path string, format string) error {
	if countActions(report) == 0 {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return writeActionsJSON(report, file)
	default: // "human"
		return writeActionsHuman(report, file)
	}
}

func countActions(report *models.SyncReport) int {
	n := 0
	for _, d := range report.Destinations {
		for _, op := range d.Operations {
			if op.Action != models.ActionSkip {
				n++
			}
		}
	}
	return n
}

// writeActionsHuman writes actions grouped by destination and kind
func writeActionsHuman(report *models.SyncReport, w io.Writer) error {
	fmt.Fprintf(w, "Actions Report\n")
	fmt.Fprintf(w, "==============\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Operation: %s\n", report.OperationID)
	fmt.Fprintf(w, "Patterns: %s\n", strings.Join(report.Patterns, ", "))
	fmt.Fprintf(w, "Dry Run: %v\n\n", report.DryRun)

	fmt.Fprintf(w, "Total Actions: %d\n\n", countActions(report))

	groups := []struct {
		label  string
		action models.Action
		failed bool
	}{
		{"Failed", "", true},
		{"Removed", models.ActionRemove, false},
		{"Copied", models.ActionCopy, false},
	}

	for _, d := range report.Destinations {
		fmt.Fprintf(w, "%s\n", d.Root)
		fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(d.Root)))

		for _, g := range groups {
			var ops []models.FileOperation
			for _, op := range d.Operations {
				if op.Action == models.ActionSkip {
					continue
				}
				if (g.failed && op.Error != nil) || (!g.failed && op.Error == nil && op.Action == g.action) {
					ops = append(ops, op)
				}
			}
			if len(ops) == 0 {
				continue
			}

			label := fmt.Sprintf("%s (%d)", g.label, len(ops))
			fmt.Fprintf(w, "%s\n", label)
			fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

			for _, op := range ops {
				if op.To != "" {
					fmt.Fprintf(w, "  %s -> %s\n", op.From, op.To)
				} else {
					fmt.Fprintf(w, "  %s\n", op.From)
				}
				if op.Error != nil {
					fmt.Fprintf(w, "    Error: %v\n", op.Error)
				} else if op.BytesCopied > 0 {
					fmt.Fprintf(w, "    Size: %s\n", formatBytes(op.BytesCopied))
				}
			}
			fmt.Fprintf(w, "\n")
		}
	}

	return nil
}

// writeActionsJSON writes actions in JSON format
func writeActionsJSON(report *models.SyncReport, w io.Writer) error {
	data := NewJSONReport(report)
	for i := range data.Destinations {
		var ops []JSONOperationData
		for _, op := range data.Destinations[i].Operations {
			if op.Action != string(models.ActionSkip) {
				ops = append(ops, op)
			}
		}
		data.Destinations[i].Operations = ops
	}

	output := struct {
		Generated string         `json:"generated"`
		Report    JSONReportData `json:"report"`
	}{
		Generated: time.Now().Format(time.RFC3339),
		Report:    data,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
