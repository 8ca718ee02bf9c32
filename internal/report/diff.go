package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLine is one line of a line-level diff. Op is ' ', '-' or '+'.
type DiffLine struct {
	Op   byte
	Text string
}

// LineDiff compares old and new line by line. Runs of unchanged lines longer than
// twice context are collapsed to context lines on each side and a "..." marker.
func LineDiff(old, new string, context int) []DiffLine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out []DiffLine
	for _, d := range diffs {
		op := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = '-'
		case diffmatchpatch.DiffInsert:
			op = '+'
		}
		for _, l := range splitLines(d.Text) {
			out = append(out, DiffLine{Op: op, Text: l})
		}
	}
	return collapse(out, context)
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func collapse(in []DiffLine, context int) []DiffLine {
	if context < 0 {
		return in
	}
	var out []DiffLine
	for i := 0; i < len(in); {
		if in[i].Op != ' ' {
			out = append(out, in[i])
			i++
			continue
		}
		j := i
		for j < len(in) && in[j].Op == ' ' {
			j++
		}
		head, tail := context, context
		if i == 0 {
			head = 0
		}
		if j == len(in) {
			tail = 0
		}
		if j-i <= head+tail {
			out = append(out, in[i:j]...)
		} else {
			out = append(out, in[i:i+head]...)
			out = append(out, DiffLine{Op: ' ', Text: "..."})
			out = append(out, in[j-tail:j]...)
		}
		i = j
	}
	return out
}
