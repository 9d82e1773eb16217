package usecase

import "strings"

// FileName builds the download name for an export: the owner's name with
// its first space replaced by an underscore, then the layout id. Later
// spaces are kept as they are.
func FileName(ownerName, templateID string) string {
	base := strings.Replace(ownerName, " ", "_", 1)
	if base == "" {
		base = "CV"
	}
	return base + "_" + templateID + ".pdf"
}
