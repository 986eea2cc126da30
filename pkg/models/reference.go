package models

import (
	"fmt"
	"time"
)

// ReferenceAuthor is an author name string with its series ordinal.
type ReferenceAuthor struct {
	FullName string
	Ordinal  int
}

// PublicationDate is a possibly-partial date. Month and Day are zero when
// unknown.
type PublicationDate struct {
	Year  int
	Month int
	Day   int
}

// QuickStatementsTime renders the date in QuickStatements time syntax with
// the precision matching the known fields (9 year, 10 month, 11 day).
func (d PublicationDate) QuickStatementsTime() string {
	month, day, precision := d.Month, d.Day, 11
	switch {
	case d.Month == 0:
		month, day, precision = 1, 1, 9
	case d.Day == 0:
		day, precision = 1, 10
	}
	return fmt.Sprintf("+%04d-%02d-%02dT00:00:00Z/%d", d.Year, month, day, precision)
}

// ReferenceMetadata is the bibliographic record fetched for a DOI that is not
// yet in the knowledge base.
type ReferenceMetadata struct {
	DOI           string
	Title         string
	TitleLanguage string // BCP-47 code; empty means unknown
	LanguageQID   string
	EntityTypeQID string // instance-of target for the created item
	Published     *PublicationDate
	Volume        string
	Issue         string
	JournalTitle  string
	ISSN          string
	JournalQID    string // matched published-in item, when found
	Authors       []ReferenceAuthor
	Retrieved     time.Time // when the metadata was fetched
}
