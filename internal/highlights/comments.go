package highlights

import (
	"context"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
)

// Comments returns the full comment rows of a highlight, newest first.
func (s *Service) Comments(ctx context.Context, id string) ([]models.HighlightComment, error) {
	if _, err := s.store.GetHighlight(ctx, id); err != nil {
		return nil, err
	}
	return s.store.CommentsByHighlightIDs(ctx, []string{id})
}

func (s *Service) AddComment(ctx context.Context, id string, req models.CommentRequest) (models.HighlightComment, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.HighlightComment{}, err
	}
	if _, err := s.store.GetHighlight(ctx, id); err != nil {
		return models.HighlightComment{}, err
	}
	return s.store.CreateComment(ctx, id, req.Content)
}

func (s *Service) UpdateComment(ctx context.Context, commentID string, req models.CommentRequest) (models.HighlightComment, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.HighlightComment{}, err
	}
	return s.store.UpdateComment(ctx, commentID, req.Content)
}

func (s *Service) DeleteComment(ctx context.Context, commentID string) error {
	deleted, err := s.store.DeleteComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("comment", commentID)
	}
	return nil
}
