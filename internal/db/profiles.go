package db

import (
	"context"
	"fmt"

	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
)

func (s *Store) CreateSocialProfile(ctx context.Context, p models.SocialProfile) (models.SocialProfile, error) {
	if p.ID == "" {
		p.ID = s.newID()
	}
	p.CreatedAt = s.now()
	row := store.Row{
		"id":             p.ID,
		"platform":       p.Platform,
		"profile_name":   p.ProfileName,
		"profile_handle": p.ProfileHandle,
		"profile_url":    p.ProfileURL,
		"is_active":      p.IsActive,
		"created_at":     p.CreatedAt,
	}
	var out []models.SocialProfile
	if err := s.gw.Insert(ctx, store.TableSocialProfiles, []store.Row{row}, &out); err != nil {
		return models.SocialProfile{}, fmt.Errorf("failed to create social profile: %w", err)
	}
	if created, ok := first(out); ok {
		return created, nil
	}
	return p, nil
}

func (s *Store) ListSocialProfiles(ctx context.Context) ([]models.SocialProfile, error) {
	var out []models.SocialProfile
	if err := s.gw.Select(ctx, store.TableSocialProfiles, store.From().OrderBy("profile_name", false), &out); err != nil {
		return nil, fmt.Errorf("failed to list social profiles: %w", err)
	}
	return out, nil
}

func (s *Store) SocialProfilesByIDs(ctx context.Context, ids []string) ([]models.SocialProfile, error) {
	out, err := selectIn[models.SocialProfile](ctx, s, store.TableSocialProfiles, "id", ids, store.From())
	if err != nil {
		return nil, fmt.Errorf("failed to get social profiles: %w", err)
	}
	return out, nil
}

func (s *Store) HighlightProfilesByHighlightIDs(ctx context.Context, highlightIDs []string) ([]models.HighlightProfile, error) {
	out, err := selectIn[models.HighlightProfile](ctx, s, store.TableHighlightProfiles, "highlight_id", highlightIDs, store.From())
	if err != nil {
		return nil, fmt.Errorf("failed to get highlight profiles: %w", err)
	}
	return out, nil
}

func (s *Store) HighlightProfilesByProfileID(ctx context.Context, profileID string) ([]models.HighlightProfile, error) {
	var out []models.HighlightProfile
	if err := s.gw.Select(ctx, store.TableHighlightProfiles, store.From().Where(store.Eq("profile_id", profileID)), &out); err != nil {
		return nil, fmt.Errorf("failed to get highlights for profile %s: %w", profileID, err)
	}
	return out, nil
}

// ReplaceHighlightProfiles deletes every tag of the highlight and inserts profileIDs.
func (s *Store) ReplaceHighlightProfiles(ctx context.Context, highlightID string, profileIDs []string) error {
	if err := s.gw.Delete(ctx, store.TableHighlightProfiles, []store.Filter{store.Eq("highlight_id", highlightID)}, nil); err != nil {
		return fmt.Errorf("failed to clear profiles for highlight %s: %w", highlightID, err)
	}
	ids := distinct(profileIDs)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]store.Row, len(ids))
	for i, id := range ids {
		rows[i] = store.Row{"highlight_id": highlightID, "profile_id": id}
	}
	if err := s.gw.Insert(ctx, store.TableHighlightProfiles, rows, nil); err != nil {
		return fmt.Errorf("failed to tag highlight %s: %w", highlightID, err)
	}
	return nil
}

func (s *Store) DeleteHighlightProfiles(ctx context.Context, highlightIDs []string) error {
	if _, err := deleteIn[models.HighlightProfile](ctx, s, store.TableHighlightProfiles, "highlight_id", highlightIDs); err != nil {
		return fmt.Errorf("failed to delete highlight profiles: %w", err)
	}
	return nil
}
