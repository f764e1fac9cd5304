package highlights

import "podcast-highlighter/internal/models"

// Overlaps reports whether seg intersects [start, end). Touching at a boundary is not overlap.
func Overlaps(seg models.Segment, start, end float64) bool {
	return seg.StartS < end && seg.EndS > start
}

// Overlapping returns the segments that overlap [start, end), preserving input order.
func Overlapping(segments []models.Segment, start, end float64) []models.Segment {
	out := make([]models.Segment, 0, len(segments))
	for _, s := range segments {
		if Overlaps(s, start, end) {
			out = append(out, s)
		}
	}
	return out
}
