package models_test

import (
	"strings"
	"testing"

	"smartcomplaint/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

// TestNewComplaintID verifies the public identifier format: "CMP" followed
// by exactly 8 digits.
func TestNewComplaintID(t *testing.T) {
	id := models.NewComplaintID()

	assert.Len(t, id, 11)
	assert.True(t, strings.HasPrefix(id, "CMP"))
	for _, r := range id[3:] {
		assert.True(t, r >= '0' && r <= '9', "expected digit, got %q", r)
	}
}

// TestNewComplaintIDVariety checks that consecutive IDs are not constant.
func TestNewComplaintIDVariety(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[models.NewComplaintID()] = true
	}
	assert.Greater(t, len(seen), 1, "IDs should vary")
}

// TestBeforeCreateDefaults verifies the hook assigns an ID and the pending
// status, and never overwrites an existing ID.
func TestBeforeCreateDefaults(t *testing.T) {
	c := &models.Complaint{}
	err := c.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, c.ComplaintID)
	assert.Equal(t, models.StatusPending, c.Status)

	// An already-assigned ID is immutable.
	fixed := &models.Complaint{ComplaintID: "CMP00000001", Status: models.StatusResolved}
	err = fixed.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, "CMP00000001", fixed.ComplaintID)
	assert.Equal(t, models.StatusResolved, fixed.Status)
}

func TestHasGPS(t *testing.T) {
	lat, lon := 48.45, 35.05
	assert.False(t, (&models.Complaint{}).HasGPS())
	assert.False(t, (&models.Complaint{Latitude: &lat}).HasGPS())
	assert.True(t, (&models.Complaint{Latitude: &lat, Longitude: &lon}).HasGPS())
}
