package city

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelvins/geocoder"
)

// City is a monitored location. ID is the small integer key the historical
// store uses; Name is the display form written to snapshot rows.
// Lat/Lon may be nil after parsing when the configuration omitted them;
// Resolve fills them in before any fetch work starts.
type City struct {
	ID   int
	Name string
	Lat  *float64
	Lon  *float64
}

func ptr(v float64) *float64 { return &v }

// Defaults returns the built-in monitored set.
func Defaults() []City {
	return []City{
		{ID: 1, Name: "Hanoi", Lat: ptr(21.0285), Lon: ptr(105.8542)},
		{ID: 2, Name: "Danang", Lat: ptr(16.0544), Lon: ptr(108.2022)},
	}
}

// DefaultIDs returns the ids of the built-in set, in configured order.
func DefaultIDs() []int {
	defaults := Defaults()
	ids := make([]int, len(defaults))
	for i, c := range defaults {
		ids[i] = c.ID
	}
	return ids
}

// Parse reads a comma-separated city list of the form
// "id:name:lat:lon" or "id:name" (coordinates resolved later via Resolve).
// Order is preserved; it is the iteration order of every collector run.
func Parse(s string) ([]City, error) {
	var cities []City
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 2 && len(parts) != 4 {
			return nil, fmt.Errorf("invalid city entry %q: want id:name or id:name:lat:lon", entry)
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid city id in %q: %w", entry, err)
		}
		c := City{ID: id, Name: strings.TrimSpace(parts[1])}
		if c.Name == "" {
			return nil, fmt.Errorf("empty city name in %q", entry)
		}
		if len(parts) == 4 {
			lat, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid latitude in %q: %w", entry, err)
			}
			lon, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid longitude in %q: %w", entry, err)
			}
			c.Lat, c.Lon = &lat, &lon
		}
		cities = append(cities, c)
	}
	if len(cities) == 0 {
		return Defaults(), nil
	}
	return cities, nil
}

// ParseIDList reads a comma-separated id list such as "1,2".
// Invalid entries are skipped; an empty result falls back to the default ids.
func ParseIDList(s string) []int {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return DefaultIDs()
	}
	return ids
}

// NameMap builds the id-to-display-name lookup used when labelling merged rows.
func NameMap(cities []City) map[int]string {
	m := make(map[int]string, len(cities))
	for _, c := range cities {
		m[c.ID] = c.Name
	}
	return m
}

// DisplayName returns the display name for id, falling back to the id's
// string form when the id is not in the lookup.
func DisplayName(names map[int]string, id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// Resolve fills in missing coordinates through the Google geocoding API.
// Cities configured with explicit coordinates are never looked up.
// A missing API key or a failed lookup is a startup error: every city must
// have coordinates before the first fetch.
func Resolve(cities []City, apiKey string) error {
	for i := range cities {
		if cities[i].Lat != nil && cities[i].Lon != nil {
			continue
		}
		if apiKey == "" {
			return fmt.Errorf("city %q has no coordinates and GEOCODER_API_KEY is not set", cities[i].Name)
		}
		geocoder.ApiKey = apiKey
		loc, err := geocoder.Geocoding(geocoder.Address{City: cities[i].Name})
		if err != nil {
			return fmt.Errorf("geocode city %q: %w", cities[i].Name, err)
		}
		cities[i].Lat = &loc.Latitude
		cities[i].Lon = &loc.Longitude
	}
	return nil
}
