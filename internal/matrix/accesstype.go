package matrix

import "strings"

// AccessType is the coarse category derived from the free-text
// classification column of the source spreadsheet.
type AccessType string

const (
	AccessAutomatic AccessType = "automatic"
	AccessRequest   AccessType = "request"
	AccessOther     AccessType = "other"
)

// ClassifyAccess buckets a classification text by keyword. The spreadsheet
// is written in Portuguese; "mediante request" marks request-based grants
// and "automático" (with or without the accent) marks automatic ones.
// Request keywords win when both appear.
func ClassifyAccess(classification string) AccessType {
	text := strings.ToLower(classification)

	if strings.Contains(text, "mediante request") || strings.Contains(text, "request") {
		return AccessRequest
	}
	if strings.Contains(text, "automático") || strings.Contains(text, "automatico") {
		return AccessAutomatic
	}
	return AccessOther
}
