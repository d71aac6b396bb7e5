// ABOUTME: Device composition counts for the summary views
// ABOUTME: Groups listed devices by status and by brand

package summary

import (
	"sort"
	"strings"

	"github.com/ptisa/inventory-admin/internal/client"
)

// Unassigned labels devices with an empty group value
const Unassigned = "Unassigned"

// Bucket is one group and how many devices fall in it
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is the composition of the device inventory
type Summary struct {
	Total    int      `json:"total"`
	ByStatus []Bucket `json:"by_status"`
	ByBrand  []Bucket `json:"by_brand"`
}

// Build counts devices per status and per brand. Buckets are sorted by count,
// largest first, then by name.
func Build(devices []client.Device) Summary {
	return Summary{
		Total:    len(devices),
		ByStatus: group(devices, func(d client.Device) string { return d.Status }),
		ByBrand:  group(devices, func(d client.Device) string { return d.Brand }),
	}
}

// Percent returns the share of the total a bucket represents
func (s Summary) Percent(b Bucket) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(b.Count) * 100 / float64(s.Total)
}

func group(devices []client.Device, key func(client.Device) string) []Bucket {
	counts := make(map[string]int)
	for _, d := range devices {
		name := strings.TrimSpace(key(d))
		if name == "" {
			name = Unassigned
		}
		counts[name]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for name, n := range counts {
		buckets = append(buckets, Bucket{Name: name, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Name < buckets[j].Name
	})
	return buckets
}
