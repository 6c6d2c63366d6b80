package specextractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gsmarena-scraper/lib/recordio"
	"gsmarena-scraper/lib/scrapers/gsmarena"
	"gsmarena-scraper/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func specServer(t testing.TB) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/phone_a-review-1001.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/oneplus_13-13621.php">Full phone specifications</a>
		</body></html>`)
	})
	mux.HandleFunc("/oneplus_13-13621.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<h1 class="specs-phone-name-title">OnePlus 13</h1>
			<table>
				<tr><td>Technology</td><td>GSM / HSPA / LTE / 5G</td></tr>
				<tr><td>Announced</td><td>2024, October 31</td></tr>
			</table>
		</body></html>`)
	})
	mux.HandleFunc("/phone_b-review-1002.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No links here.</p></body></html>`)
	})
	mux.HandleFunc("/phone_c-review-1003.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/vivo_x300_pro_5g-14225.php">vivo X300 Pro 5G specs</a>
		</body></html>`)
	})
	mux.HandleFunc("/vivo_x300_pro_5g-14225.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<h1 class="specs-phone-name-title">vivo X300 Pro 5G</h1>
			<table>
				<tr><td>Dimensions</td><td>161.9 x 75.5 x 8 mm</td></tr>
			</table>
		</body></html>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writePhoneList(t testing.TB, dir string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(dir, "reviews.csv")
	require.NoError(t, recordio.WriteCSVFile(path, gsmarena.ReviewCSVHeader, rows))
	return path
}

func TestRunExtractsAndCheckpoints(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/specextractor")
	defer cleanup()

	srv := specServer(t)
	client, err := gsmarena.NewClient(gsmarena.ClientOptions{BaseUrl: srv.URL + "/"})
	require.NoError(t, err)

	dir := t.TempDir()
	input := writePhoneList(t, dir, [][]string{
		{"Phone A Review", srv.URL + "/phone_a-review-1001.php", "", "", "05 Nov 2024", ""},
		{"Phone B Review", srv.URL + "/phone_b-review-1002.php", "", "", "", ""},
		{"", "", "", "", "", ""}, // no review_url, dropped on read
		{"Phone C Review", srv.URL + "/phone_c-review-1003.php", "", "", "12 Nov 2024", ""},
	})
	outputJSON := filepath.Join(dir, "specs.json")
	outputCSV := filepath.Join(dir, "specs.csv")

	result, err := Run(context.Background(), client, Options{
		InputCSV:           input,
		OutputJSON:         outputJSON,
		OutputCSV:          outputCSV,
		AlternateThreshold: 1,
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Equal(t, 1, result.Skipped)

	first := result.Records[0]
	require.Equal(t, "OnePlus 13", first.PhoneName)
	require.Equal(t, srv.URL+"/oneplus_13-13621.php", first.Metadata.SpecURL)
	require.Equal(t, "05 Nov 2024", first.Metadata.Date)
	require.Equal(t, "GSM / HSPA / LTE / 5G", first.Categories["General"]["Technology"])

	// the checkpoint file holds the final snapshot
	data, err := os.ReadFile(outputJSON)
	require.NoError(t, err)
	var saved []gsmarena.SpecificationRecord
	require.NoError(t, json.Unmarshal(data, &saved))
	if diff := cmp.Diff(result.Records, saved); diff != "" {
		t.Fatal(diff)
	}

	rows, err := recordio.ReadCSVRows(outputCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Phone A Review", rows[0]["phone_name"])
	require.Equal(t, "2024, October 31", rows[0]["General - Announced"])
	// columns missing for a phone come out blank
	require.Equal(t, "", rows[1]["General - Announced"])
	require.Equal(t, "161.9 x 75.5 x 8 mm", rows[1]["General - Dimensions"])
}

func TestRunHonorsStartFromAndMaxPhones(t *testing.T) {
	srv := specServer(t)
	client, err := gsmarena.NewClient(gsmarena.ClientOptions{BaseUrl: srv.URL + "/"})
	require.NoError(t, err)

	dir := t.TempDir()
	input := writePhoneList(t, dir, [][]string{
		{"Phone A Review", srv.URL + "/phone_a-review-1001.php", "", "", "", ""},
		{"Phone C Review", srv.URL + "/phone_c-review-1003.php", "", "", "", ""},
	})

	result, err := Run(context.Background(), client, Options{
		InputCSV:           input,
		OutputJSON:         filepath.Join(dir, "specs.json"),
		StartFrom:          1,
		MaxPhones:          5,
		AlternateThreshold: 1,
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, "vivo X300 Pro 5G", result.Records[0].PhoneName)

	result, err = Run(context.Background(), client, Options{
		InputCSV:           input,
		OutputJSON:         filepath.Join(dir, "specs.json"),
		MaxPhones:          1,
		AlternateThreshold: 1,
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, "OnePlus 13", result.Records[0].PhoneName)
}

func TestRunSurvivesCheckpointFailures(t *testing.T) {
	srv := specServer(t)
	client, err := gsmarena.NewClient(gsmarena.ClientOptions{BaseUrl: srv.URL + "/"})
	require.NoError(t, err)

	dir := t.TempDir()
	input := writePhoneList(t, dir, [][]string{
		{"Phone A Review", srv.URL + "/phone_a-review-1001.php", "", "", "", ""},
		{"Phone C Review", srv.URL + "/phone_c-review-1003.php", "", "", "", ""},
	})

	// a directory in place of the output file makes every write fail
	blocked := filepath.Join(dir, "specs.json")
	require.NoError(t, os.Mkdir(blocked, 0o755))

	result, err := Run(context.Background(), client, Options{
		InputCSV:           input,
		OutputJSON:         blocked,
		AlternateThreshold: 1,
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Equal(t, 0, result.Skipped)
}

func TestReadPhoneListDefaults(t *testing.T) {
	dir := t.TempDir()
	input := writePhoneList(t, dir, [][]string{
		{"", "https://example.com/a-review-1001.php", "", "", "", ""},
	})

	phones, err := ReadPhoneList(input)
	require.NoError(t, err)
	require.Len(t, phones, 1)
	require.Equal(t, "Unknown", phones[0].PhoneName)
	require.Equal(t, "Unknown", phones[0].Date)
}

func TestFlattenForCSV(t *testing.T) {
	records := []gsmarena.SpecificationRecord{
		{
			// the spec page title never reaches the CSV; the listing
			// name from the metadata does
			PhoneName: "vivo X300 Pro 5G",
			Metadata: gsmarena.SpecMetadata{
				PhoneName: "vivo X300 Pro 5G Review",
				Date:      "05 Nov 2024",
			},
			Categories: map[string]map[string]string{
				"Network": {"Technology": "5G"},
				"Display": {"Size": "6.82 inches"},
			},
		},
		{
			Metadata: gsmarena.SpecMetadata{PhoneName: "Phone B Review"},
			Categories: map[string]map[string]string{
				"Network": {"Technology": "LTE"},
			},
		},
	}

	header, rows := FlattenForCSV(records)
	require.Equal(t, []string{
		"phone_name", "date", "review_url", "spec_url",
		"Display - Size", "Network - Technology",
	}, header)
	require.Equal(t, []string{"vivo X300 Pro 5G Review", "05 Nov 2024", "", "", "6.82 inches", "5G"}, rows[0])
	require.Equal(t, []string{"Phone B Review", "", "", "", "", "LTE"}, rows[1])
}
