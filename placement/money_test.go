package placement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentdesk/placement-engine/placement"
)

func TestDisplayAmount(t *testing.T) {
	assert.Equal(t, "1500.00", placement.DisplayAmount(150_000))
	assert.Equal(t, "0.05", placement.DisplayAmount(5))
	assert.Equal(t, "-42.50", placement.DisplayAmount(-4250))
	assert.Equal(t, "0.00", placement.DisplayAmount(0))
}

func TestParseAmount(t *testing.T) {
	got, err := placement.ParseAmount("1500.00")
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), got)

	got, err = placement.ParseAmount("0.05")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	_, err = placement.ParseAmount("10.001")
	assert.True(t, placement.IsValidation(err), "sub-unit precision must be rejected")

	_, err = placement.ParseAmount("not-a-number")
	assert.True(t, placement.IsValidation(err))
}
