package emitter

import (
	"fmt"
	"strings"

	"github.com/phytocite/occimport/pkg/models"
)

// RenderSummary renders the human-readable run summary printed at the end of
// a run, including next actions for rows that need follow-up.
func RenderSummary(plan *models.Plan) string {
	s := plan.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s\n", s.RunID)
	fmt.Fprintf(&b, "  records processed:   %d\n", s.Records)
	fmt.Fprintf(&b, "  statements queued:   %d\n", s.Statements)
	fmt.Fprintf(&b, "  chemicals to create: %d\n", s.ChemicalCreations)
	fmt.Fprintf(&b, "  references to create: %d\n", s.ReferenceCreations)
	b.WriteString("\n")
	fmt.Fprintf(&b, "  created:       %d\n", s.Created)
	fmt.Fprintf(&b, "  existing:      %d\n", s.Existing)
	fmt.Fprintf(&b, "  manual review: %d\n", s.ManualReview)
	fmt.Fprintf(&b, "  deferred:      %d\n", s.Deferred)
	fmt.Fprintf(&b, "  errors:        %d\n", s.Errors)

	var actions []string
	if s.SecondRunRequired {
		actions = append(actions, s.SecondRunReason)
	}
	if s.ManualReview > 0 {
		actions = append(actions, fmt.Sprintf(
			"%d record(s) need manual review (see the status report); create the missing taxa and rerun",
			s.ManualReview))
	}
	if s.Errors > 0 {
		actions = append(actions, fmt.Sprintf(
			"%d record(s) failed with errors; inspect the status report and rerun the affected rows",
			s.Errors))
	}
	if len(actions) > 0 {
		b.WriteString("\nNext actions:\n")
		for _, action := range actions {
			fmt.Fprintf(&b, "  - %s\n", action)
		}
	}
	return b.String()
}
