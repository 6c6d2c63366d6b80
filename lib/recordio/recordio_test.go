package recordio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteCSVReadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	header := []string{"phone_name", "review_url", "date"}
	rows := [][]string{
		{"vivo X300 Pro 5G", "https://example.com/vivo-review-1.php", "01 Nov 2025"},
		{"Pixel 10", "https://example.com/pixel-review-2.php", ""},
	}
	require.NoError(t, WriteCSVFile(path, header, rows))

	got, err := ReadCSVRows(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "vivo X300 Pro 5G", got[0]["phone_name"])
	require.Equal(t, "", got[1]["date"])
}

func TestWriteCSVRejectsRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	err := WriteCSVFile(path, []string{"a", "b"}, [][]string{{"only one"}})
	require.Error(t, err)
}

func TestWriteJSONReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	require.NoError(t, WriteJSONFile(path, []string{"first", "second", "third"}))
	require.NoError(t, WriteJSONFile(path, []string{"only"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `["only"]`, string(data))
}

func TestReadCSVRowsMissingFile(t *testing.T) {
	_, err := ReadCSVRows(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
