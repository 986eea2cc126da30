package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phytocite/occimport/pkg/models"
)

func defaultColumns() ColumnConfig {
	return ColumnConfig{
		ChemicalName: "chemical_entity_name",
		Structure:    "chemical_entity_smiles",
		Taxon:        "taxon_name",
		DOI:          "reference_doi",
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidFile(t *testing.T) {
	path := writeCSV(t, `chemical_entity_name,chemical_entity_smiles,taxon_name,reference_doi
Caffeine,CN1C=NC2=C1C(=O)N(C(=O)N2C)C,Coffea arabica,10.1000/j.test.2020.01
Quercetin,C1=CC(=C(C=C1...)O)O,Allium cepa,10.1000/J.TEST.2020.01
`)

	result, err := Load(path, defaultColumns(), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Empty(t, result.Skipped)

	first := result.Records[0]
	assert.Equal(t, 2, first.Row, "data rows are numbered from 2; the header is row 1")
	assert.Equal(t, "Caffeine", first.ChemicalName)
	assert.Equal(t, "Coffea arabica", first.TaxonName)
	assert.Equal(t, "10.1000/j.test.2020.01", first.DOI)
	assert.Equal(t, 3, result.Records[1].Row)
}

func TestLoadSkipsRowsWithMissingValues(t *testing.T) {
	path := writeCSV(t, `chemical_entity_name,chemical_entity_smiles,taxon_name,reference_doi
Caffeine,CN1C,Coffea arabica,10.1000/a
,CN1C,Coffea arabica,10.1000/b
Quercetin,,Allium cepa,10.1000/c
Luteolin,CC,Salvia officinalis,
`)

	result, err := Load(path, defaultColumns(), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Len(t, result.Skipped, 3)

	assert.Equal(t, 3, result.Skipped[0].Row)
	assert.Equal(t, models.StatusError, result.Skipped[0].Status)
	assert.Contains(t, result.Skipped[0].Detail, "chemical_entity_name")
	assert.Contains(t, result.Skipped[1].Detail, "chemical_entity_smiles")
	assert.Contains(t, result.Skipped[2].Detail, "reference_doi")
}

func TestLoadShortRowReported(t *testing.T) {
	path := writeCSV(t, `chemical_entity_name,chemical_entity_smiles,taxon_name,reference_doi
Caffeine,CN1C
`)

	result, err := Load(path, defaultColumns(), zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, models.StatusError, result.Skipped[0].Status)
}

func TestLoadMissingHeaderFatal(t *testing.T) {
	path := writeCSV(t, `name,smiles,taxon,doi
Caffeine,CN1C,Coffea arabica,10.1000/a
`)

	_, err := Load(path, defaultColumns(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required CSV column "chemical_entity_name"`)
	assert.Contains(t, err.Error(), "--column-chemical-name", "the error must name the override flag")
}

func TestLoadColumnOverrides(t *testing.T) {
	path := writeCSV(t, `compound,structure,species,doi
Caffeine,CN1C,Coffea arabica,10.1000/a
`)

	columns := ColumnConfig{ChemicalName: "compound", Structure: "structure", Taxon: "species", DOI: "doi"}
	result, err := Load(path, columns, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Caffeine", result.Records[0].ChemicalName)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), defaultColumns(), zap.NewNop())
	require.Error(t, err)
}

func TestNormalizeTaxonName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Vernonanthura patens (Kunth) H.Rob.", "Vernonanthura patens"},
		{"Coffea arabica", "Coffea arabica"},
		{"Coffea", "Coffea"},
		{"  Salvia   officinalis  L. ", "Salvia officinalis"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTaxonName(tt.in))
	}
}
