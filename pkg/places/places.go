package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const nearbySearchURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

type Place struct {
	Name    string
	Address string
	Rating  float64
	OpenNow *bool
}

type IPlaces interface {
	Search(ctx context.Context, latitude, longitude float64, keyword string, maxResults int) ([]Place, error)
}

type placesClient struct {
	apiKey     string
	httpClient *http.Client
}

func New() IPlaces {
	return &placesClient{
		apiKey:     os.Getenv("GOOGLE_PLACES_API_KEY"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name         string  `json:"name"`
		Vicinity     string  `json:"vicinity"`
		Rating       float64 `json:"rating"`
		OpeningHours *struct {
			OpenNow bool `json:"open_now"`
		} `json:"opening_hours"`
	} `json:"results"`
}

// Search runs one proximity search ranked by distance from the given point.
func (p *placesClient) Search(ctx context.Context, latitude, longitude float64, keyword string, maxResults int) ([]Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", latitude, longitude))
	params.Set("rankby", "distance")
	params.Set("keyword", keyword)
	params.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nearbySearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("places API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var parsed nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}

	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places API status: %s", parsed.Status)
	}

	var result []Place
	for _, r := range parsed.Results {
		if len(result) >= maxResults {
			break
		}
		place := Place{Name: r.Name, Address: r.Vicinity, Rating: r.Rating}
		if r.OpeningHours != nil {
			open := r.OpeningHours.OpenNow
			place.OpenNow = &open
		}
		result = append(result, place)
	}

	return result, nil
}
