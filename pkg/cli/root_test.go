package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phytocite/occimport/pkg/config"
)

func TestNewRootCommandMetadata(t *testing.T) {
	cmd := NewRootCommand("1.2.3")
	assert.Equal(t, "occimport", cmd.Use)
	assert.Equal(t, "1.2.3", cmd.Version)

	for _, flag := range []string{
		"input", "output", "mode", "concurrency", "verbose",
		"column-chemical-name", "column-structure", "column-taxon", "column-doi",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	cmd := NewRootCommand("dev")
	cmd.SetArgs([]string{"--input", "in.csv", "--mode", "telepathy"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestResolveColumns(t *testing.T) {
	cfg := &config.Config{
		Columns: config.ColumnsConfig{
			ChemicalName: "chemical_entity_name",
			Structure:    "chemical_entity_smiles",
			Taxon:        "taxon_name",
			DOI:          "reference_doi",
		},
	}

	columns := resolveColumns(cfg, &rootFlags{})
	assert.Equal(t, "chemical_entity_name", columns.ChemicalName)
	assert.Equal(t, "reference_doi", columns.DOI)

	columns = resolveColumns(cfg, &rootFlags{columnTaxon: "species", columnDOI: "doi"})
	assert.Equal(t, "species", columns.Taxon)
	assert.Equal(t, "doi", columns.DOI)
	assert.Equal(t, "chemical_entity_smiles", columns.Structure, "unset overrides keep the configured name")
}
