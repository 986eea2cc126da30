// Package emitter renders a finalized plan into the QuickStatements V1 batch
// syntax plus the per-record report and run summary. This is the only package
// that understands the target syntax; placeholders arrive as opaque symbols
// and leave as the format's own forward-reference convention.
package emitter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/phytocite/occimport/pkg/models"
)

// Knowledge-base vocabulary used by the emitted commands.
const (
	propInstanceOf      = "P31"
	propCanonicalSMILES = "P233"
	propInChI           = "P234"
	propInChIKey        = "P235"
	propFormula         = "P274"
	propIsomericSMILES  = "P2017"
	propFoundInTaxon    = "P703"
	propDOI             = "P356"
	propTitle           = "P1476"
	propLanguageOfWork  = "P407"
	propPublicationDate = "P577"
	propPublishedIn     = "P1433"
	propVolume          = "P478"
	propIssue           = "P433"
	propAuthorNameStr   = "P2093"
	propSeriesOrdinal   = "P1545"

	qualStatedIn  = "S248"
	qualRetrieved = "S813"

	chemicalTypeQID = "Q113145171" // type of chemical entity
	crossrefQID     = "Q5188229"

	chemicalDescription  = "type of chemical entity"
	referenceDescription = "scholarly reference"
)

// RenderScript renders the batch in emission order: reference creations,
// chemical creations (each block carrying the occurrence statements bound to
// its placeholder), then statements whose operands all exist. Within a
// creation block the format's LAST keyword is the placeholder; a statement is
// therefore always preceded by the creation it depends on.
func RenderScript(plan *models.Plan) string {
	var lines []string
	for _, ref := range plan.References {
		lines = append(lines, referenceCommands(ref.Metadata)...)
	}
	for _, chem := range plan.Chemicals {
		lines = append(lines, chemicalCommands(chem)...)
	}
	for _, stmt := range plan.Statements {
		lines = append(lines, statementCommand(stmt.Chemical.QID, stmt))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func chemicalCommands(chem models.ChemicalCreation) []string {
	s := chem.Structure
	commands := []string{
		"CREATE",
		fmt.Sprintf("LAST\tLen\t%s", quote(chem.Label)),
		fmt.Sprintf("LAST\tDen\t%s", quote(chemicalDescription)),
		fmt.Sprintf("LAST\t%s\t%s", propInstanceOf, chemicalTypeQID),
	}
	if s.CanonicalSMILES != "" {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s", propCanonicalSMILES, quote(s.CanonicalSMILES)))
	}
	if s.IsomericSMILES != "" {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s", propIsomericSMILES, quote(s.IsomericSMILES)))
	}
	if s.InChI != "" {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s", propInChI, quote(s.InChI)))
	}
	commands = append(commands, fmt.Sprintf("LAST\t%s\t%s", propInChIKey, quote(s.InChIKey)))
	if s.Formula != "" {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s", propFormula, quote(s.Formula)))
	}
	for _, stmt := range chem.Statements {
		commands = append(commands, statementCommand("LAST", stmt))
	}
	return commands
}

func referenceCommands(m *models.ReferenceMetadata) []string {
	retrieved := fmt.Sprintf("+%sT00:00:00Z/11", m.Retrieved.Format("2006-01-02"))
	provenance := fmt.Sprintf("%s\t%s\t%s\t%s", qualStatedIn, crossrefQID, qualRetrieved, retrieved)

	commands := []string{
		"CREATE",
		fmt.Sprintf("LAST\tLmul\t%s", quote(m.Title)),
		fmt.Sprintf("LAST\tDen\t%s", quote(referenceDescription)),
		fmt.Sprintf("LAST\t%s\t%s", propInstanceOf, m.EntityTypeQID),
		fmt.Sprintf("LAST\t%s\t%s\t%s", propDOI, quote(m.DOI), provenance),
	}

	titleLang := m.TitleLanguage
	if titleLang == "" {
		titleLang = "mul"
	}
	commands = append(commands, fmt.Sprintf("LAST\t%s\t%s:%s\t%s", propTitle, titleLang, quote(m.Title), provenance))

	if m.LanguageQID != "" {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s\t%s", propLanguageOfWork, m.LanguageQID, provenance))
	}
	if m.Published != nil {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s\t%s", propPublicationDate, m.Published.QuickStatementsTime(), provenance))
	}
	if m.JournalQID != "" {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s\t%s", propPublishedIn, m.JournalQID, provenance))
	}
	if m.Volume != "" {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s\t%s", propVolume, quote(m.Volume), provenance))
	}
	if m.Issue != "" {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s\t%s", propIssue, quote(m.Issue), provenance))
	}
	for _, author := range m.Authors {
		commands = append(commands, fmt.Sprintf("LAST\t%s\t%s\t%s\t%s\t%s",
			propAuthorNameStr, quote(author.FullName),
			propSeriesOrdinal, quote(fmt.Sprintf("%d", author.Ordinal)),
			provenance))
	}
	return commands
}

func statementCommand(subject string, stmt models.StatementOp) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
		subject, propFoundInTaxon, stmt.TaxonQID, qualStatedIn, stmt.ReferenceQID)
}

// quote renders a QuickStatements string literal.
func quote(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ").Replace(value)
	return `"` + strings.TrimSpace(escaped) + `"`
}

// SubmissionURL builds the ready-to-run QuickStatements link for a rendered
// script (tabs become pipes, newlines become double pipes).
func SubmissionURL(script string) string {
	normalized := strings.ReplaceAll(script, "\r", "")
	normalized = strings.TrimRight(normalized, "\n")
	encoded := strings.ReplaceAll(normalized, "\t", "|")
	encoded = strings.ReplaceAll(encoded, "\n", "||")
	return "https://quickstatements.toolforge.org/#/v1=" + url.QueryEscape(encoded)
}
