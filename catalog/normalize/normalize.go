// Package normalize repairs known mis-encoded sequences in vendor text.
//
// The vendor exports its catalog in a legacy single-byte encoding; symbols
// that were originally UTF-8 arrive as fixed mojibake sequences. The table
// below maps the sequences seen in the wild to ASCII equivalents.
package normalize

import "strings"

// Every replacement output is pure ASCII and no pattern is, so applying the
// table twice is the same as applying it once.
var replacer = strings.NewReplacer(
	"Âµ", "u", // micro sign
	"Î©", "Ohm", // ohm sign
	"Â±", "+/-", // plus-minus
	"â„ƒ", "C", // degree Celsius
	"ï¼…", "%", // full-width percent
)

// Text replaces known mojibake in category and description fields.
// Idempotent and safe on already clean input.
func Text(s string) string {
	return replacer.Replace(s)
}
