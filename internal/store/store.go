package store

import (
	"context"
	"fmt"
	"regexp"
)

const (
	TableEpisodes          = "episodes"
	TableSegments          = "segments"
	TableSpeakers          = "speakers"
	TableSegmentSpeakers   = "segment_speakers"
	TableHighlights        = "highlights"
	TableHighlightSegments = "highlight_segments"
	TableHighlightComments = "highlight_comments"
	TableHighlightProfiles = "highlight_profiles"
	TablePrompts           = "prompts"
	TableSocialProfiles    = "social_profiles"
)

// Row is a set of column values for insert and update.
type Row map[string]any

// Gateway is a generic query facade over the backing store.
// dest is a pointer to a slice of records; affected rows are decoded into it. A nil dest discards them.
type Gateway interface {
	Select(ctx context.Context, table string, q Query, dest any) error
	Insert(ctx context.Context, table string, rows []Row, dest any) error
	Update(ctx context.Context, table string, patch Row, filters []Filter, dest any) error
	Delete(ctx context.Context, table string, filters []Filter, dest any) error
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to use as a table or column name.
func ValidIdentifier(name string) bool {
	return identifier.MatchString(name)
}

// CheckIdentifiers returns an error for the first name that is not a plain identifier.
func CheckIdentifiers(names ...string) error {
	for _, n := range names {
		if !ValidIdentifier(n) {
			return fmt.Errorf("invalid identifier %q", n)
		}
	}
	return nil
}
