package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForContributions(t *testing.T) {
	tests := []struct {
		name          string
		contributions int
		want          Badge
	}{
		{"zero", 0, ContribTier1},
		{"below first threshold", 99, ContribTier1},
		{"boundary falls into next tier", 100, ContribTier2},
		{"mid second tier", 999, ContribTier2},
		{"third tier", 1000, ContribTier3},
		{"fourth tier", 5000, ContribTier4},
		{"top boundary", 10000, ContribTier5},
		{"far beyond", 123456, ContribTier5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForContributions(tt.contributions))
		})
	}
}

func TestForFollowers(t *testing.T) {
	tests := []struct {
		name      string
		followers int
		want      Badge
	}{
		{"zero", 0, FollowerTier1},
		{"below first threshold", 49, FollowerTier1},
		{"boundary falls into next tier", 50, FollowerTier2},
		{"second tier upper edge", 249, FollowerTier2},
		{"third tier", 250, FollowerTier3},
		{"top boundary", 1000, FollowerTier4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForFollowers(tt.followers))
		})
	}
}

func TestClassify(t *testing.T) {
	contribBadge, followerBadge := Classify(99, 49)
	assert.Equal(t, ContribTier1, contribBadge)
	assert.Equal(t, FollowerTier1, followerBadge)

	contribBadge, followerBadge = Classify(100, 50)
	assert.Equal(t, ContribTier2, contribBadge)
	assert.Equal(t, FollowerTier2, followerBadge)

	contribBadge, followerBadge = Classify(10000, 1000)
	assert.Equal(t, ContribTier5, contribBadge)
	assert.Equal(t, FollowerTier4, followerBadge)
}
