package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "f1,f2,label\n1.5,2,pos\n-0.5,3.25,neg\n")

	X, labels, headers, err := LoadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"f1", "f2", "label"}, headers)
	assert.Equal(t, []string{"pos", "neg"}, labels)
	require.Len(t, X, 2)

	v, _ := X[0][0].Float64()
	assert.InDelta(t, 1.5, v, 1e-12)
	v, _ = X[1][1].Float64()
	assert.InDelta(t, 3.25, v, 1e-12)
}

func TestReaderBatches(t *testing.T) {
	path := writeCSV(t, "f1,label\n1,a\n2,b\n3,a\n")

	reader, err := NewReader(path, -1)
	require.NoError(t, err)
	defer reader.Close()

	X, labels, err := reader.ReadBatch(2)
	require.NoError(t, err)
	assert.Len(t, X, 2)
	assert.Equal(t, []string{"a", "b"}, labels)

	X, labels, err = reader.ReadBatch(2)
	require.NoError(t, err)
	assert.Len(t, X, 1)
	assert.Equal(t, []string{"a"}, labels)
}

func TestReaderLabelColumn(t *testing.T) {
	path := writeCSV(t, "label,f1\nx,1\ny,2\n")

	reader, err := NewReader(path, 0)
	require.NoError(t, err)
	defer reader.Close()

	X, labels, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, labels)
	require.Len(t, X[0], 1)
}

func TestLoadCSVErrors(t *testing.T) {
	_, _, _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := writeCSV(t, "f1,label\nnot-a-number,a\n")
	_, _, _, err = LoadCSV(path)
	assert.Error(t, err, "non-numeric feature value")

	path = writeCSV(t, "f1,label\n1,\n")
	_, _, _, err = LoadCSV(path)
	assert.Error(t, err, "empty label")

	path = writeCSV(t, "f1,label\n")
	_, _, _, err = LoadCSV(path)
	assert.Error(t, err, "header only, no data rows")
}
