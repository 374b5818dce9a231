package scan

import "tserr/internal/diagnostic"

// Partition splits diagnostics into new and recurring against a set of
// previously known identity keys. Pure: the same inputs always partition the
// same way, so a second run over unchanged code reports zero new diagnostics.
// Input order is preserved within each part.
func Partition(diags []*diagnostic.Diagnostic, known map[string]struct{}) (newDiags, recurring []*diagnostic.Diagnostic) {
	for _, d := range diags {
		if _, ok := known[d.Key()]; ok {
			recurring = append(recurring, d)
		} else {
			newDiags = append(newDiags, d)
		}
	}
	return newDiags, recurring
}
