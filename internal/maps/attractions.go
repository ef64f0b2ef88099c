// README: Google Places lookup for top attractions, used as itinerary prompt hints.
package maps

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"googlemaps.github.io/maps"
)

// Attraction represents a simplified place result.
type Attraction struct {
	Name             string
	Rating           float32
	UserRatingsTotal int
}

// AttractionService handles interactions with Google Places API.
type AttractionService struct {
	client *maps.Client
}

// NewAttractionService creates an AttractionService with the given API key.
func NewAttractionService(apiKey string) (*AttractionService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &AttractionService{client: client}, nil
}

// TopAttractions returns up to limit well-rated attractions near the
// destination, best rated first.
func (s *AttractionService) TopAttractions(ctx context.Context, destination string, limit int) ([]Attraction, error) {
	r := &maps.TextSearchRequest{
		Query:    destination + " 景點",
		Language: "zh-TW",
		Region:   "TW",
	}

	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	// Filter out results that are plainly not sights.
	excluded := []string{"Hotel", "飯店", "旅館", "民宿", "Parking", "停車場"}

	var out []Attraction
	for _, p := range resp.Results {
		skip := false
		for _, kw := range excluded {
			if strings.Contains(p.Name, kw) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		out = append(out, Attraction{
			Name:             p.Name,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
		})
	}

	sortByRating(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sortByRating orders attractions best rated first, ratings count as
// tie breaker.
func sortByRating(attractions []Attraction) {
	sort.Slice(attractions, func(i, j int) bool {
		if attractions[i].Rating != attractions[j].Rating {
			return attractions[i].Rating > attractions[j].Rating
		}
		return attractions[i].UserRatingsTotal > attractions[j].UserRatingsTotal
	})
}

// HintLine renders attractions as a single prompt hint line.
func HintLine(attractions []Attraction) string {
	if len(attractions) == 0 {
		return ""
	}
	names := make([]string, len(attractions))
	for i, a := range attractions {
		names[i] = fmt.Sprintf("%s (⭐%.1f)", a.Name, a.Rating)
	}
	return "熱門景點參考：" + strings.Join(names, "、")
}
