package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/parser"
)

func TestCoordinator_AutoRecognize(t *testing.T) {
	c := NewCoordinator(testOptions())

	report, err := c.Import(ImportOptions{
		FileName: "satis 01.02.2025 - 28.02.2025.csv",
		Data:     []byte("Şube;Ürün;Miktar\nCHL Bursa;Latte;2\n"),
	})
	require.NoError(t, err)
	require.NotNil(t, report.Recognition)
	assert.Equal(t, model.SourceSales, report.Kind)
	assert.Equal(t, 1, report.Dataset.Len())
	assert.Equal(t, []string{"Şube", "Ürün", "Miktar"}, report.Columns)
}

func TestCoordinator_ExplicitKind(t *testing.T) {
	c := NewCoordinator(testOptions())

	report, err := c.Import(ImportOptions{
		Kind:     model.SourceRecipe,
		FileName: "recete.csv",
		Data:     []byte("Ürün,Hammadde,Miktar,Birim\nLATTE,SÜT,200,gr\n,ESPRESSO,18,gr\n"),
	})
	require.NoError(t, err)
	assert.Nil(t, report.Recognition)
	assert.Equal(t, 2, report.Dataset.Len())
}

func TestCoordinator_ReadError(t *testing.T) {
	c := NewCoordinator(testOptions())

	_, err := c.Import(ImportOptions{Kind: model.SourceSales, FileName: "bos.csv"})
	require.ErrorIs(t, err, parser.ErrEmptyInput)
}
