package validate

import (
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/textnorm"
)

// FindMissingValues returns the fields whose value matches no token of line.
// Fields are tried in order and a matched token is consumed, so one token
// never confirms two fields.
func FindMissingValues(line string, fields []Field) []Field {
	tokens := strings.Fields(textnorm.ReplaceNBSP(line))
	var missing []Field
	for _, f := range fields {
		found := false
		for i, tok := range tokens {
			if FieldMatch(f.Value, tok) || FloatEqual(f.Value, tok) {
				tokens = append(tokens[:i], tokens[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, f)
		}
	}
	return missing
}
