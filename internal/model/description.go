package model

import "strings"

// DescriptionLines splits an experience description into bullet lines.
// Both real newlines and the escaped two-character "\n" sequence separate
// lines. Blank lines are dropped and a leading "- " marker is removed.
func DescriptionLines(desc string) []string {
	desc = strings.ReplaceAll(desc, `\n`, "\n")
	var out []string
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
