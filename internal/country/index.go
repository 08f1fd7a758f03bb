package country

import "strings"

// Incident is one row of the incident table: zero or more countries.
type Incident struct {
	Countries []string `json:"countries" yaml:"countries"`
}

// BuildIndex counts incidents per country. A country listed twice in one
// incident counts once. Names are trimmed and merged case-insensitively
// under the first spelling seen.
func BuildIndex(incidents []Incident) Index {
	idx := Index{Incidents: make(map[string]int)}
	canonical := make(map[string]string)

	for _, inc := range incidents {
		seen := make(map[string]struct{}, len(inc.Countries))
		for _, raw := range inc.Countries {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if c, ok := canonical[key]; ok {
				name = c
			} else {
				canonical[key] = name
			}
			idx.Incidents[name]++
			idx.Total++
		}
	}
	return idx
}

// Ratio returns the country's share of all recorded incidents.
func (i Index) Ratio(country string) float64 {
	if i.Total == 0 {
		return 0
	}
	key, n := foldName(country), 0
	for name, c := range i.Incidents {
		if foldName(name) == key {
			n += max(c, 0)
		}
	}
	return ratio(n, i.Total)
}
