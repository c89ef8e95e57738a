package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrip_DurationMinutes(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     int
		ok       bool
	}{
		{name: "minutes suffix", duration: "12 minutes", want: 12, ok: true},
		{name: "single minute", duration: "1 minutes", want: 1, ok: true},
		{name: "empty", duration: "", ok: false},
		{name: "no digits", duration: "unknown", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Trip{Duration: tt.duration}.DurationMinutes()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrip_CostValue(t *testing.T) {
	cost, ok := Trip{Cost: "12.5 kr"}.CostValue()
	require.True(t, ok)
	assert.InDelta(t, 12.5, cost, 0.0001)

	_, ok = Trip{Cost: "free"}.CostValue()
	assert.False(t, ok)
}

func TestTrip_StartedAt(t *testing.T) {
	started, ok := Trip{StartTime: "2025-03-01T10:15:00Z"}.StartedAt()
	require.True(t, ok)
	assert.Equal(t, 2025, started.Year())

	_, ok = Trip{StartTime: "yesterday"}.StartedAt()
	assert.False(t, ok)
}

func TestRoles_UnmarshalJSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		var r Roles
		require.NoError(t, json.Unmarshal([]byte(`["user","admin"]`), &r))
		assert.Equal(t, Roles{"user", "admin"}, r)
	})

	t.Run("single string", func(t *testing.T) {
		var r Roles
		require.NoError(t, json.Unmarshal([]byte(`"user"`), &r))
		assert.Equal(t, Roles{"user"}, r)
	})

	t.Run("invalid", func(t *testing.T) {
		var r Roles
		require.Error(t, json.Unmarshal([]byte(`42`), &r))
	})
}

func TestIdentity_HasRole(t *testing.T) {
	id := &Identity{ID: "1", Email: "a@b.se", Roles: Roles{"user"}}
	assert.True(t, id.HasRole(RoleUser))
	assert.False(t, id.HasRole("admin"))
}
