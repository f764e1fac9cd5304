// Package prompts manages versioned detection prompts and the social
// profiles highlights are tagged for.
package prompts

import (
	"context"

	"github.com/rs/zerolog"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/db"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
	"podcast-highlighter/internal/validate"
)

type Service struct {
	store    *db.Store
	validate *validate.Validator
}

func NewService(store *db.Store) *Service {
	return &Service{store: store, validate: validate.New()}
}

// Create stores a new version of the named prompt, one above the latest.
func (s *Service) Create(ctx context.Context, req models.PromptCreate) (models.Prompt, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Prompt{}, err
	}
	latest, err := s.store.LatestPromptVersion(ctx, req.Name)
	if err != nil {
		return models.Prompt{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p, err := s.store.CreatePrompt(ctx, models.Prompt{
		Name:         req.Name,
		Version:      latest + 1,
		TemplateText: req.TemplateText,
		IsActive:     active,
	})
	if err != nil {
		return models.Prompt{}, err
	}
	zerolog.Ctx(ctx).Info().Str("prompt", p.Name).Int("version", p.Version).Msg("prompt created")
	return p, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.Prompt, error) {
	return s.store.ListPrompts(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id string) (models.Prompt, error) {
	return s.store.GetPrompt(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, patch models.PromptPatch) (models.Prompt, error) {
	if err := s.validate.Struct(patch); err != nil {
		return models.Prompt{}, err
	}
	row := store.Row{}
	if patch.TemplateText != nil {
		row["template_text"] = *patch.TemplateText
	}
	if patch.IsActive != nil {
		row["is_active"] = *patch.IsActive
	}
	if len(row) == 0 {
		return s.store.GetPrompt(ctx, id)
	}
	return s.store.UpdatePrompt(ctx, id, row)
}

// Delete removes one prompt version. Highlights that referenced it enrich with a null prompt.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeletePrompt(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("prompt", id)
	}
	return nil
}

func (s *Service) Profiles(ctx context.Context) ([]models.SocialProfile, error) {
	return s.store.ListSocialProfiles(ctx)
}

func (s *Service) CreateProfile(ctx context.Context, req models.SocialProfileCreate) (models.SocialProfile, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.SocialProfile{}, err
	}
	return s.store.CreateSocialProfile(ctx, models.SocialProfile{
		Platform:      req.Platform,
		ProfileName:   req.ProfileName,
		ProfileHandle: req.ProfileHandle,
		ProfileURL:    req.ProfileURL,
		IsActive:      true,
	})
}
