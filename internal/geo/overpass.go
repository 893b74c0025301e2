package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Facility is a named point of interest near the user, with the distance from
// the query coordinate already computed.
type Facility struct {
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
	Address    string  `json:"address"`
	MapsLink   string  `json:"maps_link"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Client queries the Overpass (OpenStreetMap) API for amenities around a
// coordinate. It keeps no state between calls.
type Client struct {
	baseURL      string
	radiusMeters int
	maxResults   int
	httpClient   *http.Client
}

func NewClient(baseURL string, radiusMeters, maxResults int, timeout time.Duration) *Client {
	if radiusMeters <= 0 {
		radiusMeters = 20000
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:      baseURL,
		radiusMeters: radiusMeters,
		maxResults:   maxResults,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// FindNearby returns up to maxResults facilities tagged with the given amenity
// within the configured radius, sorted ascending by distance, with duplicate
// names removed (first occurrence wins). A network or HTTP failure is returned
// as an error; callers decide whether to surface or swallow it.
func (c *Client) FindNearby(ctx context.Context, lat, lon float64, amenity string) ([]Facility, error) {
	query := c.buildQuery(lat, lon, amenity)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query overpass: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	return c.collect(lat, lon, parsed.Elements), nil
}

func (c *Client) buildQuery(lat, lon float64, amenity string) string {
	var b strings.Builder
	b.WriteString("[out:json];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s(around:%d,%f,%f)[\"amenity\"=\"%s\"];\n",
			kind, c.radiusMeters, lat, lon, amenity)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}

func (c *Client) collect(userLat, userLon float64, elements []overpassElement) []Facility {
	seen := make(map[string]struct{}, len(elements))
	facilities := make([]Facility, 0, len(elements))

	for _, el := range elements {
		name, ok := el.Tags["name"]
		if !ok || name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}

		lat, lon, ok := resolveCoordinates(el)
		if !ok {
			continue
		}

		seen[name] = struct{}{}
		facilities = append(facilities, Facility{
			Name:       name,
			DistanceKm: DistanceKm(userLat, userLon, lat, lon),
			Address:    buildAddress(el.Tags, lat, lon),
			MapsLink:   fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", lat, lon),
		})
	}

	sort.Slice(facilities, func(i, j int) bool {
		return facilities[i].DistanceKm < facilities[j].DistanceKm
	})
	if len(facilities) > c.maxResults {
		facilities = facilities[:c.maxResults]
	}
	return facilities
}

// resolveCoordinates prefers the element's own lat/lon (nodes) and falls back
// to the computed center (ways and relations queried with "out center").
func resolveCoordinates(el overpassElement) (float64, float64, bool) {
	if el.Lat != 0 || el.Lon != 0 {
		return el.Lat, el.Lon, true
	}
	if el.Center != nil && (el.Center.Lat != 0 || el.Center.Lon != 0) {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

func buildAddress(tags map[string]string, lat, lon float64) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"addr:housenumber", "addr:street", "addr:city"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.4f, %.4f", lat, lon)
	}
	return strings.Join(parts, ", ")
}
