package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

func TestPullZipTown(t *testing.T) {
	t.Run("single-word town", func(t *testing.T) {
		zip, town, err := pullZipTown("6121 N Lamar, Austin 78752")
		assert.NoError(t, err)
		assert.Equal(t, "78752", zip)
		assert.Equal(t, "Austin", town)
	})

	t.Run("multi-word town", func(t *testing.T) {
		zip, town, err := pullZipTown("3506 Twin River Blvd, Corpus Christi 78410")
		assert.NoError(t, err)
		assert.Equal(t, "78410", zip)
		assert.Equal(t, "Corpus Christi", town)
	})

	t.Run("unexpected shape", func(t *testing.T) {
		_, _, err := pullZipTown("not an address")
		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParse))
	})
}

func TestPullLatLong(t *testing.T) {
	t.Run("map link with destination", func(t *testing.T) {
		lat, lng, err := pullLatLong("http://maps.google.com/?saddr=&daddr=30.431045,-97.649429")
		assert.NoError(t, err)
		assert.Equal(t, 30.431045, lat)
		assert.Equal(t, -97.649429, lng)
	})

	t.Run("missing daddr", func(t *testing.T) {
		_, _, err := pullLatLong("http://maps.google.com/?saddr=")
		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParse))
	})

	t.Run("non numeric coordinates", func(t *testing.T) {
		_, _, err := pullLatLong("http://maps.google.com/?daddr=here,there")
		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParse))
	})
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "(512) 555-0142", formatPhone("5125550142"))
	assert.Equal(t, "(512) 555-0142", formatPhone("512-555-0142"))
	// Too short to format, passed through.
	assert.Equal(t, "555", formatPhone("555"))
}
