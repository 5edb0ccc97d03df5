package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreSetReplaces(t *testing.T) {
	s := NewStore()

	_, had := s.Set("g1", KindAI, "c1")
	assert.False(t, had)

	prev, had := s.Set("g1", KindAI, "c2")
	assert.True(t, had)
	assert.Equal(t, "c1", prev)

	got, ok := s.Get("g1", KindAI)
	assert.True(t, ok)
	assert.Equal(t, "c2", got)
}

func TestStoreKindsAreIndependent(t *testing.T) {
	s := NewStore()
	s.Set("g1", KindAI, "general")
	s.Set("g1", KindImage, "art")
	s.Set("g2", KindAI, "chat")

	ai, _ := s.Get("g1", KindAI)
	img, _ := s.Get("g1", KindImage)
	assert.Equal(t, "general", ai)
	assert.Equal(t, "art", img)

	_, ok := s.Get("g2", KindImage)
	assert.False(t, ok)

	assert.Equal(t, map[Kind]int{KindAI: 2, KindImage: 1}, s.Counts())
}

func TestStoreRemoveOnlyMatchingChannel(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		remove   string
		removed  bool
		expected string
	}{
		{name: "match", stored: "c1", remove: "c1", removed: true},
		{name: "different channel", stored: "c1", remove: "c2", expected: "c1"},
		{name: "nothing stored", remove: "c1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			if tt.stored != "" {
				s.Set("g1", KindImage, tt.stored)
			}

			got, ok := s.Remove("g1", KindImage, tt.remove)
			assert.Equal(t, tt.removed, ok)
			if tt.removed {
				assert.Equal(t, tt.remove, got)
			}

			current, has := s.Get("g1", KindImage)
			assert.Equal(t, tt.expected != "", has)
			assert.Equal(t, tt.expected, current)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ai", KindAI.String())
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, KindImage, KindAI.other())
	assert.Equal(t, KindAI, KindImage.other())
}
