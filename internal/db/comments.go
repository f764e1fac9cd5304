package db

import (
	"context"
	"fmt"
	"sort"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
)

// CommentsByHighlightIDs returns the comments of all given highlights, newest first.
func (s *Store) CommentsByHighlightIDs(ctx context.Context, highlightIDs []string) ([]models.HighlightComment, error) {
	out, err := selectIn[models.HighlightComment](ctx, s, store.TableHighlightComments, "highlight_id", highlightIDs,
		store.From().OrderBy("created_at", true))
	if err != nil {
		return nil, fmt.Errorf("failed to get highlight comments: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateComment(ctx context.Context, highlightID, content string) (models.HighlightComment, error) {
	now := s.now()
	c := models.HighlightComment{ID: s.newID(), HighlightID: highlightID, Content: content, CreatedAt: now, UpdatedAt: now}
	row := store.Row{
		"id":           c.ID,
		"highlight_id": c.HighlightID,
		"content":      c.Content,
		"created_at":   c.CreatedAt,
		"updated_at":   c.UpdatedAt,
	}
	var out []models.HighlightComment
	if err := s.gw.Insert(ctx, store.TableHighlightComments, []store.Row{row}, &out); err != nil {
		return models.HighlightComment{}, fmt.Errorf("failed to create comment: %w", err)
	}
	if created, ok := first(out); ok {
		return created, nil
	}
	return c, nil
}

func (s *Store) UpdateComment(ctx context.Context, id, content string) (models.HighlightComment, error) {
	var out []models.HighlightComment
	patch := store.Row{"content": content, "updated_at": s.now()}
	if err := s.gw.Update(ctx, store.TableHighlightComments, patch, []store.Filter{store.Eq("id", id)}, &out); err != nil {
		return models.HighlightComment{}, fmt.Errorf("failed to update comment %s: %w", id, err)
	}
	c, ok := first(out)
	if !ok {
		return models.HighlightComment{}, apperr.NotFound("comment", id)
	}
	return c, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) (bool, error) {
	var out []models.HighlightComment
	if err := s.gw.Delete(ctx, store.TableHighlightComments, []store.Filter{store.Eq("id", id)}, &out); err != nil {
		return false, fmt.Errorf("failed to delete comment %s: %w", id, err)
	}
	return len(out) > 0, nil
}

func (s *Store) DeleteCommentsByHighlightIDs(ctx context.Context, highlightIDs []string) error {
	if _, err := deleteIn[models.HighlightComment](ctx, s, store.TableHighlightComments, "highlight_id", highlightIDs); err != nil {
		return fmt.Errorf("failed to delete highlight comments: %w", err)
	}
	return nil
}
