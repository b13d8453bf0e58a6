package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/runlen/runlen"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestLoad(t *testing.T) {
	path := writeZip(t, map[string]string{
		"a.json": `{"sequences": [[5, 3, 5, 1], [0, 0, 0]]}`,
		"b.json": `{"sequences": [[7], []]}`,
	})

	var dump bytes.Buffer
	st, err := Load(path, runlen.Default, &dump)
	require.NoError(t, err)
	require.Equal(t, LoadStats{Files: 2, Sequences: 4, Values: 8, Runs: 4, Sum: 15}, st)

	lines := strings.Split(strings.TrimSpace(dump.String()), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines, "[3,3,6]")
	require.Contains(t, lines, "[3]")
	require.Contains(t, lines, "[]")
}

func TestLoadRuns(t *testing.T) {
	path := writeZip(t, map[string]string{
		"a.json": `{"sequences": [[0, 0, 0], [2, 0]]}`,
	})

	st, err := Load(path, runlen.Counter{Weight: 3, Policy: runlen.Runs}, nil)
	require.NoError(t, err)
	require.Equal(t, LoadStats{Files: 1, Sequences: 2, Values: 5, Runs: 3, Sum: 15}, st)
}

func TestLoadSkipsOtherFields(t *testing.T) {
	path := writeZip(t, map[string]string{
		"a.json": `{"meta": 1, "sequences": [[5]], "tail": {"x": [1, 2]}}`,
		"b.json": `{"sequences": [[2, 2]], "meta": "x"}`,
	})

	st, err := Load(path, runlen.Default, nil)
	require.NoError(t, err)
	require.Equal(t, LoadStats{Files: 2, Sequences: 2, Values: 3, Runs: 2, Sum: 9}, st)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.zip"), runlen.Default, nil)
	require.ErrorIs(t, err, os.ErrNotExist)

	path := writeZip(t, map[string]string{
		"bad.json": `{"accounts": []}`,
	})
	_, err = Load(path, runlen.Default, nil)
	require.ErrorContains(t, err, "no sequences")

	path = writeZip(t, map[string]string{
		"bad.json": `{"accounts": [}`,
	})
	_, err = Load(path, runlen.Default, nil)
	require.ErrorContains(t, err, "bad.json")

	path = writeZip(t, map[string]string{
		"bad.json": `{"sequences": [[1, -1]]}`,
	})
	_, err = Load(path, runlen.Default, nil)
	require.ErrorContains(t, err, "bad.json")
}

func TestLoadSequences(t *testing.T) {
	var st LoadStats
	err := loadSequences(strings.NewReader(`{"sequences": [[9, 9, 1, 9]]}`), runlen.Default, nil, &st)
	require.NoError(t, err)
	require.Equal(t, LoadStats{Files: 1, Sequences: 1, Values: 4, Runs: 2, Sum: 12}, st)

	err = loadSequences(strings.NewReader(``), runlen.Default, nil, &st)
	require.Error(t, err)
}
