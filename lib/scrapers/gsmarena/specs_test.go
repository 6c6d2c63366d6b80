package gsmarena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpecURLFromDoc(t *testing.T) {
	c := testClient(t)

	t.Run("prefers spec phrase anchors", func(t *testing.T) {
		doc := parseDoc(t, `
<html><body>
<a href="/news.php3">News</a>
<a href="/vivo_x300_pro_5g-14225.php">Full phone specifications</a>
<a href="/vivo_x300_pro_5g-review-2901.php">Review</a>
</body></html>`)
		require.Equal(t,
			"https://www.gsmarena.com/vivo_x300_pro_5g-14225.php",
			c.SpecURLFromDoc(doc))
	})

	t.Run("falls back to numeric page pattern", func(t *testing.T) {
		doc := parseDoc(t, `
<html><body>
<a href="/vivo_x300_pro_5g-review-2901.php">The verdict</a>
<a href="/vivo_x300_pro_5g-14225.php">vivo X300 Pro 5G</a>
</body></html>`)
		require.Equal(t,
			"https://www.gsmarena.com/vivo_x300_pro_5g-14225.php",
			c.SpecURLFromDoc(doc))
	})

	t.Run("review pages never match the fallback", func(t *testing.T) {
		doc := parseDoc(t, `
<html><body>
<a href="/vivo_x300_pro_5g-review-2901.php">Part 2</a>
</body></html>`)
		require.Equal(t, "", c.SpecURLFromDoc(doc))
	})

	t.Run("phrase match requires a page file href", func(t *testing.T) {
		doc := parseDoc(t, `
<html><body>
<a href="#specs">Specifications</a>
</body></html>`)
		require.Equal(t, "", c.SpecURLFromDoc(doc))
	})
}

const specPage = `
<html><body>
<h1 class="specs-phone-name-title">vivo X300 Pro 5G</h1>
<table>
	<tr><th rowspan="2">Network</th><td>Technology</td><td>GSM / HSPA / 5G</td></tr>
	<tr><td>Speed</td><td>HSPA, LTE, 5G</td></tr>
</table>
<table>
	<tr><th>Display</th><td>Type</td><td>LTPO AMOLED</td></tr>
	<tr><td>Size</td><td>6.78 inches</td></tr>
	<tr><td>Size</td><td>6.78 inches, 111.0 cm2</td></tr>
</table>
</body></html>`

func TestParseSpecifications(t *testing.T) {
	phoneName, categories := ParseSpecifications(parseDoc(t, specPage))
	require.Equal(t, "vivo X300 Pro 5G", phoneName)

	// the first table has no preceding header cell
	require.Equal(t, map[string]string{
		"Technology": "GSM / HSPA / 5G",
		"Speed":      "HSPA, LTE, 5G",
	}, categories["General"])

	// the second table's nearest preceding header cell is the first table's
	require.Equal(t, "LTPO AMOLED", categories["Network"]["Type"])
	// later duplicate rows overwrite earlier ones
	require.Equal(t, "6.78 inches, 111.0 cm2", categories["Network"]["Size"])
}

func TestParseSpecificationsAlt(t *testing.T) {
	doc := parseDoc(t, `
<html><body>
<div id="specs-list">
<table>
	<tr><th>Battery</th></tr>
	<tr><td class="ttl">Type</td><td class="nfo">Si/C 6510 mAh</td></tr>
	<tr><td class="ttl">Charging</td><td class="nfo">90W wired</td></tr>
</table>
<table>
	<tr><td class="ttl">orphan</td><td class="nfo">no header, skipped</td></tr>
</table>
</div>
</body></html>`)

	categories := map[string]map[string]string{}
	ParseSpecificationsAlt(doc, categories)

	require.Equal(t, map[string]map[string]string{
		"Battery": {
			"Type":     "Si/C 6510 mAh",
			"Charging": "90W wired",
		},
	}, categories)
}

func TestParseSpecificationsEmptyPage(t *testing.T) {
	phoneName, categories := ParseSpecifications(parseDoc(t, `<html><body><p>404</p></body></html>`))
	require.Equal(t, "", phoneName)
	require.Empty(t, categories)
}
