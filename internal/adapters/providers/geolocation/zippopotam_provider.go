package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slotscout/slotscout/internal/domain/providers"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

const (
	defaultZippopotamURL = "https://api.zippopotam.us/us"
	defaultHTTPTimeout   = 8 * time.Second
	zipCacheTTLSeconds   = 60 * 60 * 24 * 30
)

// ZippopotamProvider resolves US postal codes via the Zippopotam API.
// Resolutions are cached; zip-to-coordinate mappings effectively never
// change.
type ZippopotamProvider struct {
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
}

// NewZippopotamProvider creates a new Zippopotam provider.
func NewZippopotamProvider(cache providers.CacheProvider) *ZippopotamProvider {
	return NewZippopotamProviderWithOptions(cache, defaultZippopotamURL, nil)
}

// NewZippopotamProviderWithOptions allows overriding the base URL and HTTP
// client (used for tests).
func NewZippopotamProviderWithOptions(cache providers.CacheProvider, baseURL string, httpClient *http.Client) *ZippopotamProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultZippopotamURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &ZippopotamProvider{
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
	}
}

// ResolveZip converts a postal code to coordinates. An unknown or malformed
// zip yields an invalid-zip error.
func (z *ZippopotamProvider) ResolveZip(ctx context.Context, zip string) (*providers.Coordinates, error) {
	zip = strings.TrimSpace(zip)
	if !isZipShaped(zip) {
		return nil, apperrors.NewInvalidZipError(fmt.Sprintf("not a valid zip code: %q", zip))
	}

	cacheKey := "geo:zip:" + zip
	if z.cache != nil {
		if cached, err := z.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var coords providers.Coordinates
			if err := json.Unmarshal(cached, &coords); err == nil {
				return &coords, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, z.baseURL+"/"+zip, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build zip lookup request", err)
	}

	resp, err := z.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewRemoteUnavailableError("zip lookup request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewInvalidZipError(fmt.Sprintf("zip code does not resolve: %q", zip))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewRemoteUnavailableError(
			fmt.Sprintf("zip lookup returned status %d", resp.StatusCode), nil)
	}

	var payload zippopotamResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewUnexpectedResponseError("failed to decode zip lookup response", err)
	}
	if len(payload.Places) == 0 {
		return nil, apperrors.NewInvalidZipError(fmt.Sprintf("zip code has no places: %q", zip))
	}

	// Zippopotam serves coordinates as strings.
	lat, latErr := strconv.ParseFloat(payload.Places[0].Latitude, 64)
	lng, lngErr := strconv.ParseFloat(payload.Places[0].Longitude, 64)
	if latErr != nil || lngErr != nil {
		return nil, apperrors.NewUnexpectedResponseError(
			fmt.Sprintf("zip lookup coordinates are not numeric for %q", zip), nil)
	}

	coords := providers.Coordinates{Latitude: lat, Longitude: lng}
	if z.cache != nil {
		if data, err := json.Marshal(coords); err == nil {
			_ = z.cache.Set(ctx, cacheKey, data, zipCacheTTLSeconds)
		}
	}
	return &coords, nil
}

// Distance computes the great-circle distance between two points.
func (z *ZippopotamProvider) Distance(from, to providers.Coordinates, unit providers.DistanceUnit) float64 {
	return Haversine(from, to, unit)
}

func isZipShaped(zip string) bool {
	if len(zip) != 5 {
		return false
	}
	for _, r := range zip {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type zippopotamResponse struct {
	PostCode string `json:"post code"`
	Places   []struct {
		PlaceName string `json:"place name"`
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"places"`
}

var _ providers.GeolocationProvider = (*ZippopotamProvider)(nil)
