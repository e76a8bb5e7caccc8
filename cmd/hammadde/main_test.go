package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "config.toml"), "--no-color"))
	err := rootCmd.Execute()
	return out.String(), err
}

func analyzeInputs(t *testing.T) (string, string, string) {
	dir := t.TempDir()
	return writeInput(t, dir, "recete.csv", "Ürün,Hammadde,Miktar,Birim\nPOĞAÇA,LABNE,50,gr\n"),
		writeInput(t, dir, "havi.csv", "invoice date;cust-desc;adfc-desc;Faturadaki Miktar\n15.03.2025;CHL Bursa;labne 2 kg;3\n"),
		writeInput(t, dir, "aktifpos.csv", "Şube;Ürün;Miktar\nCHL Bursa;POĞAÇA;100\n")
}

func TestAnalyzeWritesCSV(t *testing.T) {
	recipe, supply, sales := analyzeInputs(t)
	out := t.TempDir()

	_, err := execute(t, "analyze", "--recipe", recipe, "--supply", supply, "--sales", sales, "--out", out, "--json=false")
	require.NoError(t, err)

	detailed, err := os.ReadFile(filepath.Join(out, "hammadde_analizi_detayli.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(detailed)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "BURSA,LABNE,gr"), lines[1])

	assert.FileExists(t, filepath.Join(out, "hammadde_analizi_sube_ozeti.csv"))
}

func TestAnalyzeJSON(t *testing.T) {
	recipe, supply, sales := analyzeInputs(t)

	output, err := execute(t, "analyze", "--recipe", recipe, "--supply", supply, "--sales", sales, "--json")
	require.NoError(t, err)

	var payload struct {
		Results []struct {
			Branch   string `json:"branch"`
			Resource string `json:"resource"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &payload), output)
	require.Len(t, payload.Results, 1)
	assert.Equal(t, "BURSA", payload.Results[0].Branch)
	analyzeJSON = false
}

func TestTablesCheck(t *testing.T) {
	dir := t.TempDir()

	ok := writeInput(t, dir, "ok.yaml", "resources:\n  - {pattern: \"labne\", name: \"LABNE\"}\n")
	_, err := execute(t, "tables", "check", "--file", ok)
	require.NoError(t, err)

	bad := writeInput(t, dir, "bad.yaml", "resources:\n  - {pattern: \"labne\", name: \"LABNE\"}\n  - {pattern: \"LABNE\", name: \"PEYNIR\"}\n")
	_, err = execute(t, "tables", "check", "--file", bad)
	require.Error(t, err)
	tablesFile = ""
}
