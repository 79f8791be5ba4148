package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimsift/internal/model"
)

func TestValidator_NormalizesLabels(t *testing.T) {
	claims := []model.Claim{
		{Claim: "a", Classification: "true"},
		{Claim: "b", Classification: " 'MISLEADING' "},
		{Claim: "c", Classification: "Unverifiable"},
		{Claim: "d", Classification: "Partly true"},
	}

	got, stats := NewValidator(nil).Validate(claims)
	require.Len(t, got, 4)

	assert.Equal(t, model.ClassificationTrue, got[0].Classification)
	assert.Equal(t, model.ClassificationMisleading, got[1].Classification)
	assert.Equal(t, model.ClassificationUnverifiable, got[2].Classification)
	assert.Equal(t, model.Classification("Partly true"), got[3].Classification)

	assert.Equal(t, Stats{Kept: 4, Normalized: 2, UnknownLabels: 1}, stats)
}

func TestValidator_DropsEmptyClaims(t *testing.T) {
	claims := []model.Claim{
		{Claim: "  ", Classification: "False"},
		{Claim: " kept ", Reason: " because ", Classification: "False"},
		{},
	}

	got, stats := NewValidator(nil).Validate(claims)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].Claim)
	assert.Equal(t, "because", got[0].Reason)
	assert.Equal(t, 2, stats.DroppedEmpty)
	assert.Equal(t, 1, stats.Kept)
}

func TestValidator_Empty(t *testing.T) {
	got, stats := NewValidator(nil).Validate(nil)
	assert.Empty(t, got)
	assert.Zero(t, stats.Kept)
}
