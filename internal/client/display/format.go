package display

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrettyPrintJSON writes v as indented JSON
func PrettyPrintJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Fprintln(w, string(data))
}

// MovePairs formats UCI moves as numbered white/black pairs
func MovePairs(moves []string) []string {
	lines := make([]string, 0, (len(moves)+1)/2)
	for i := 0; i < len(moves); i += 2 {
		moveNum := i/2 + 1
		if i+1 < len(moves) {
			lines = append(lines, fmt.Sprintf("%d. %s | %s", moveNum, moves[i], moves[i+1]))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s | ...", moveNum, moves[i]))
		}
	}
	return lines
}
