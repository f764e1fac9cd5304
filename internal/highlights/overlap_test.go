package highlights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"podcast-highlighter/internal/models"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		want       bool
	}{
		{"ends at highlight start", 0, 10, false},
		{"starts at highlight end", 20, 30, false},
		{"inside", 12, 18, true},
		{"covers", 5, 25, true},
		{"straddles start", 5, 10.001, true},
		{"straddles end", 19.999, 25, true},
		{"before", 0, 5, false},
		{"after", 25, 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := models.Segment{StartS: tt.start, EndS: tt.end}
			assert.Equal(t, tt.want, Overlaps(seg, 10, 20))
		})
	}
}

func TestOverlappingKeepsOrder(t *testing.T) {
	segs := []models.Segment{
		{ID: "a", StartS: 0, EndS: 28.7},
		{ID: "b", StartS: 28.7, EndS: 36.0},
		{ID: "c", StartS: 36.0, EndS: 45.2},
		{ID: "d", StartS: 45.2, EndS: 60},
	}
	got := Overlapping(segs, 28.7, 45.2)
	assert.Equal(t, []models.Segment{segs[1], segs[2]}, got)
	assert.Empty(t, Overlapping(nil, 0, 1))
}
