package db

import (
	"context"
	"fmt"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
)

func (s *Store) CreatePrompt(ctx context.Context, p models.Prompt) (models.Prompt, error) {
	if p.ID == "" {
		p.ID = s.newID()
	}
	p.CreatedAt = s.now()
	row := store.Row{
		"id":            p.ID,
		"name":          p.Name,
		"version":       p.Version,
		"template_text": p.TemplateText,
		"is_active":     p.IsActive,
		"created_at":    p.CreatedAt,
	}
	var out []models.Prompt
	if err := s.gw.Insert(ctx, store.TablePrompts, []store.Row{row}, &out); err != nil {
		return models.Prompt{}, fmt.Errorf("failed to create prompt: %w", err)
	}
	if created, ok := first(out); ok {
		return created, nil
	}
	return p, nil
}

// ListPrompts orders by name, newest version first.
func (s *Store) ListPrompts(ctx context.Context, activeOnly bool) ([]models.Prompt, error) {
	q := store.From().OrderBy("name", false).OrderBy("version", true)
	if activeOnly {
		q = q.Where(store.Eq("is_active", true))
	}
	var out []models.Prompt
	if err := s.gw.Select(ctx, store.TablePrompts, q, &out); err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return out, nil
}

func (s *Store) GetPrompt(ctx context.Context, id string) (models.Prompt, error) {
	var out []models.Prompt
	if err := s.gw.Select(ctx, store.TablePrompts, store.From().Where(store.Eq("id", id)).Range(0, 1), &out); err != nil {
		return models.Prompt{}, fmt.Errorf("failed to get prompt %s: %w", id, err)
	}
	p, ok := first(out)
	if !ok {
		return models.Prompt{}, apperr.NotFound("prompt", id)
	}
	return p, nil
}

func (s *Store) PromptsByIDs(ctx context.Context, ids []string) ([]models.Prompt, error) {
	out, err := selectIn[models.Prompt](ctx, s, store.TablePrompts, "id", ids, store.From())
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts by id: %w", err)
	}
	return out, nil
}

// LatestPromptVersion returns the highest version stored for name, or 0.
func (s *Store) LatestPromptVersion(ctx context.Context, name string) (int, error) {
	var out []models.Prompt
	q := store.From().Where(store.Eq("name", name)).OrderBy("version", true).Range(0, 1)
	if err := s.gw.Select(ctx, store.TablePrompts, q, &out); err != nil {
		return 0, fmt.Errorf("failed to get prompt versions for %s: %w", name, err)
	}
	if p, ok := first(out); ok {
		return p.Version, nil
	}
	return 0, nil
}

func (s *Store) UpdatePrompt(ctx context.Context, id string, patch store.Row) (models.Prompt, error) {
	var out []models.Prompt
	if err := s.gw.Update(ctx, store.TablePrompts, patch, []store.Filter{store.Eq("id", id)}, &out); err != nil {
		return models.Prompt{}, fmt.Errorf("failed to update prompt %s: %w", id, err)
	}
	p, ok := first(out)
	if !ok {
		return models.Prompt{}, apperr.NotFound("prompt", id)
	}
	return p, nil
}

func (s *Store) DeletePrompt(ctx context.Context, id string) (bool, error) {
	var out []models.Prompt
	if err := s.gw.Delete(ctx, store.TablePrompts, []store.Filter{store.Eq("id", id)}, &out); err != nil {
		return false, fmt.Errorf("failed to delete prompt %s: %w", id, err)
	}
	return len(out) > 0, nil
}
