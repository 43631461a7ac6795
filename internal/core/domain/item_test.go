package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestItemPatch_Apply(t *testing.T) {
	item := Item{ID: "1", Name: "Gummy Worms", Category: "Gummy", Price: 1.5, Quantity: 50}

	ItemPatch{Price: ptr(2.0)}.Apply(&item)

	assert.Equal(t, Item{ID: "1", Name: "Gummy Worms", Category: "Gummy", Price: 2.0, Quantity: 50}, item)
}

func TestItemPatch_HasNegative(t *testing.T) {
	cases := []struct {
		name  string
		patch ItemPatch
		want  bool
	}{
		{"empty", ItemPatch{}, false},
		{"zero price", ItemPatch{Price: ptr(0.0)}, false},
		{"negative price", ItemPatch{Price: ptr(-1.0)}, true},
		{"negative quantity", ItemPatch{Quantity: ptr(-5)}, true},
		{"name only", ItemPatch{Name: ptr("Fudge")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.patch.HasNegative())
		})
	}
}

func TestUser_IsAdmin(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}
