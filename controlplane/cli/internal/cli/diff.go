package cli

import (
	"encoding/json"
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// confirmUpdate renders a unified diff between the pre- and post-update
// view of an entity, for update subcommands' confirmation output.
func confirmUpdate(label string, before, after any) string {
	oldJSON, _ := json.MarshalIndent(before, "", "  ")
	newJSON, _ := json.MarshalIndent(after, "", "  ")
	if string(oldJSON) == string(newJSON) {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath("old/"+label), string(oldJSON), string(newJSON))
	return fmt.Sprint(gotextdiff.ToUnified("old/"+label, "new/"+label, string(oldJSON)+"\n", edits))
}
