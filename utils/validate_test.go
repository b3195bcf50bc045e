package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"+6591234567", "+14155550100", "+8613812345678"}
	for _, phone := range valid {
		assert.True(t, ValidatePhone(phone), phone)
	}

	invalid := []string{"", "91234567", "+0123456", "+65 9123 4567", "+65-9123-4567", "abc"}
	for _, phone := range invalid {
		assert.False(t, ValidatePhone(phone), phone)
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(0, 0))
	assert.True(t, ValidateCoordinates(90, 180))
	assert.True(t, ValidateCoordinates(-90, -180))
	assert.True(t, ValidateCoordinates(1.3521, 103.8198))

	assert.False(t, ValidateCoordinates(90.0001, 0))
	assert.False(t, ValidateCoordinates(-91, 0))
	assert.False(t, ValidateCoordinates(0, 181))
	assert.False(t, ValidateCoordinates(0, -180.5))
}

func TestValidateAccuracy(t *testing.T) {
	assert.True(t, ValidateAccuracy(nil))

	zero := 0.0
	assert.True(t, ValidateAccuracy(&zero))

	ok := 15.5
	assert.True(t, ValidateAccuracy(&ok))

	neg := -0.1
	assert.False(t, ValidateAccuracy(&neg))
}

func TestValidateCountdown(t *testing.T) {
	assert.True(t, ValidateCountdown(1))
	assert.True(t, ValidateCountdown(5))
	assert.True(t, ValidateCountdown(30))

	assert.False(t, ValidateCountdown(0))
	assert.False(t, ValidateCountdown(-3))
	assert.False(t, ValidateCountdown(31))
}
