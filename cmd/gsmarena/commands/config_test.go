package commands

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(cwd) })
}

func TestLoadConfigMissingFile(t *testing.T) {
	chdirTemp(t)
	require.Equal(t, defaultConfig(), loadConfig())
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	chdirTemp(t)
	err := os.WriteFile("config.json5", []byte(`{
		reviews: { delay_seconds: 5 },
		images: { images_dir: "photos" },
	}`), 0o644)
	require.NoError(t, err)

	config := loadConfig()
	require.Equal(t, 5, config.Reviews.DelaySeconds)
	require.Equal(t, "photos", config.Images.ImagesDir)
	// everything else stays at its default
	require.Equal(t, "https://www.gsmarena.com/reviews.php3", config.Reviews.BaseURL)
	require.Equal(t, 5, config.Reviews.MaxPages)
	require.Equal(t, 5, config.Images.MaxImagesPerPhone)
	require.Equal(t, "gsmarena_reviews.csv", config.Specs.InputCSV)
}
