package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesByKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", notFoundErr("listing not found"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := persistenceErr("could not save listing", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestParseFeatures(t *testing.T) {
	assert.Equal(t, []string{"Sunroof", "GPS"}, ParseFeatures([]string{`["Sunroof","GPS"]`}))
	assert.Equal(t, []string{}, ParseFeatures([]string{`["Sunroof",`}))
	assert.Equal(t, []string{}, ParseFeatures([]string{`{"a":1}`}))
	assert.Equal(t, []string{}, ParseFeatures(nil))
	assert.Equal(t, []string{"A/C", "GPS"}, ParseFeatures([]string{" A/C ", "GPS", ""}))
}

func TestSplitFeatures(t *testing.T) {
	got, err := SplitFeatures(" GPS,  Sunroof ,,Bluetooth")
	assert.NoError(t, err)
	assert.Equal(t, []string{"GPS", "Sunroof", "Bluetooth"}, got)

	got, err = SplitFeatures(`["GPS","Heated seats"]`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"GPS", "Heated seats"}, got)

	got, err = SplitFeatures("")
	assert.NoError(t, err)
	assert.Equal(t, []string{}, got)

	_, err = SplitFeatures(`["GPS",`)
	assert.ErrorIs(t, err, ErrValidation)
}
