package commands

import (
	"os"

	"gsmarena-scraper/lib/configutil"
	"gsmarena-scraper/lib/serviceutil"

	"dario.cat/mergo"
)

type ReviewsConfig struct {
	BaseURL      string `json:"base_url"`
	StartPage    int    `json:"start_page"`
	MaxPages     int    `json:"max_pages"`
	DelaySeconds int    `json:"delay_seconds"`
	OutputJSON   string `json:"output_json"`
	OutputCSV    string `json:"output_csv"`
}

type SpecsConfig struct {
	InputCSV           string `json:"input_csv"`
	OutputJSON         string `json:"output_json"`
	OutputCSV          string `json:"output_csv"`
	MaxPhones          int    `json:"max_phones"`
	StartFrom          int    `json:"start_from"`
	DelaySeconds       int    `json:"delay_seconds"`
	AlternateThreshold int    `json:"alternate_threshold"`
}

type ImagesConfig struct {
	InputCSV          string `json:"input_csv"`
	ImagesDir         string `json:"images_dir"`
	ManifestPath      string `json:"manifest_path"`
	MaxPhones         int    `json:"max_phones"`
	MaxImagesPerPhone int    `json:"max_images_per_phone"`
	StartFrom         int    `json:"start_from"`
	DelaySeconds      int    `json:"delay_seconds"`
}

type Config struct {
	Reviews ReviewsConfig `json:"reviews"`
	Specs   SpecsConfig   `json:"specs"`
	Images  ImagesConfig  `json:"images"`
}

// The file outputs of one job are the defaults for the next job's inputs,
// so the three commands chain without configuration.
func defaultConfig() Config {
	return Config{
		Reviews: ReviewsConfig{
			BaseURL:      "https://www.gsmarena.com/reviews.php3",
			StartPage:    1,
			MaxPages:     5,
			DelaySeconds: 2,
			OutputJSON:   "gsmarena_reviews.json",
			OutputCSV:    "gsmarena_reviews.csv",
		},
		Specs: SpecsConfig{
			InputCSV:           "gsmarena_reviews.csv",
			OutputJSON:         "gsmarena_specifications.json",
			OutputCSV:          "gsmarena_specifications.csv",
			DelaySeconds:       2,
			AlternateThreshold: 1,
		},
		Images: ImagesConfig{
			InputCSV:          "gsmarena_specifications.csv",
			ImagesDir:         "images",
			ManifestPath:      "image_manifest.json",
			MaxImagesPerPhone: 5,
			DelaySeconds:      3,
		},
	}
}

// loadConfig reads config.json5 from the working directory and fills every
// field the file leaves unset from the defaults, so a partial config only
// overrides what it names.
func loadConfig() Config {
	config, err := configutil.ReadConfig[Config]("config.json5")
	if os.IsNotExist(err) {
		return defaultConfig()
	}
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if err := mergo.Merge(&config, defaultConfig()); err != nil {
		serviceutil.Fatal("failed to apply config defaults", err)
	}
	return config
}
