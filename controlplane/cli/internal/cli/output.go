package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
)

// printList renders rows as a psql-style ASCII table, or as JSON when the
// caller passed --json / --json-compact, matching the output contract
// every list/get subcommand shares.
func printList(f rootFlags, header []string, rows [][]string, v any) error {
	switch {
	case f.jsonCompact:
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(v)
	case f.jsonPretty:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(b))
		return nil
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
		table.SetAutoFormatHeaders(false)
		table.SetBorder(true)
		table.SetRowLine(true)
		table.SetHeader(header)
		for _, row := range rows {
			table.Append(row)
		}
		table.Render()
		return nil
	}
}

func ipString(ip [4]uint8) string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

func netString(n [5]uint8) string {
	return fmt.Sprintf("%d.%d.%d.%d/%d", n[0], n[1], n[2], n[3], n[4])
}

func pubkeyString(pk [32]byte) string {
	return pubkeyFromBytes(pk).String()
}
