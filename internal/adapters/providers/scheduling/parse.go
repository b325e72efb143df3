package scheduling

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

// pullZipTown extracts the zip code and town name from a free-text address
// of the shape "street, City ZIP", e.g. "6121 N Lamar, Austin 78752" or
// "3506 Twin River Blvd, Corpus Christi 78410".
func pullZipTown(addr string) (zip, town string, err error) {
	parts := strings.Split(addr, ",")
	tail := strings.TrimSpace(parts[len(parts)-1])

	idx := strings.LastIndex(tail, " ")
	if len(parts) < 2 || idx < 0 {
		return "", "", apperrors.NewParseError(fmt.Sprintf("failed to parse address: %q", addr))
	}

	town = strings.TrimSpace(tail[:idx])
	zip = tail[idx+1:]
	if town == "" || zip == "" {
		return "", "", apperrors.NewParseError(fmt.Sprintf("failed to parse address: %q", addr))
	}
	return zip, town, nil
}

// pullLatLong extracts latitude and longitude from a map-link URL of the
// shape "http://maps.google.com/?saddr=&daddr=30.431045,-97.649429".
func pullLatLong(mapURL string) (lat, lng float64, err error) {
	parsed, perr := url.Parse(mapURL)
	if perr != nil {
		return 0, 0, apperrors.NewParseError(fmt.Sprintf("failed to parse map link: %q", mapURL))
	}

	daddr := parsed.Query().Get("daddr")
	coords := strings.Split(daddr, ",")
	if len(coords) != 2 {
		return 0, 0, apperrors.NewParseError(fmt.Sprintf("map link has no destination coordinates: %q", mapURL))
	}

	lat, laterr := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
	lng, lngerr := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
	if laterr != nil || lngerr != nil {
		return 0, 0, apperrors.NewParseError(fmt.Sprintf("map link coordinates are not numeric: %q", mapURL))
	}
	return lat, lng, nil
}
