package highlights

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/db"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
	"podcast-highlighter/internal/validate"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Service struct {
	store    *db.Store
	agg      *Aggregator
	validate *validate.Validator
}

func NewService(store *db.Store) *Service {
	return &Service{store: store, agg: NewAggregator(store), validate: validate.New()}
}

// List returns one page of enriched highlights, newest first.
func (s *Service) List(ctx context.Context, f models.HighlightFilters) ([]models.EnrichedHighlight, error) {
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if err := s.validate.Struct(f); err != nil {
		return nil, err
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, apperr.Invalid("date_to", "must not be before date_from")
	}
	hs, err := s.store.ListHighlights(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.agg.EnrichAll(ctx, hs), nil
}

// ListAll walks every page matching f, ignoring its limit and offset.
func (s *Service) ListAll(ctx context.Context, f models.HighlightFilters) ([]models.EnrichedHighlight, error) {
	var out []models.EnrichedHighlight
	f.Offset = 0
	f.Limit = MaxLimit
	for {
		page, err := s.List(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < MaxLimit {
			break
		}
		f.Offset += MaxLimit
	}
	if out == nil {
		out = []models.EnrichedHighlight{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.EnrichedHighlight, error) {
	h, err := s.store.GetHighlight(ctx, id)
	if err != nil {
		return models.EnrichedHighlight{}, err
	}
	return s.agg.Enrich(ctx, h), nil
}

func (s *Service) Create(ctx context.Context, req models.HighlightCreate) (models.EnrichedHighlight, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.EnrichedHighlight{}, err
	}
	if _, err := s.store.GetEpisode(ctx, req.EpisodeID); err != nil {
		return models.EnrichedHighlight{}, referenceError("episode_id", err)
	}
	if req.PromptID != nil {
		if _, err := s.store.GetPrompt(ctx, *req.PromptID); err != nil {
			return models.EnrichedHighlight{}, referenceError("prompt_id", err)
		}
	}

	h, err := s.store.CreateHighlight(ctx, models.Highlight{
		EpisodeID:  req.EpisodeID,
		PromptID:   req.PromptID,
		StartS:     req.StartS,
		EndS:       req.EndS,
		Transcript: req.Transcript,
		Status:     req.Status,
	})
	if err != nil {
		return models.EnrichedHighlight{}, err
	}
	zerolog.Ctx(ctx).Info().Str("highlight_id", h.ID).Str("episode_id", h.EpisodeID).Msg("highlight created")
	return s.agg.Enrich(ctx, h), nil
}

// Update applies the scalar fields of patch and, when ProfileIDs is present,
// replaces the highlight's profile tags with exactly that set.
func (s *Service) Update(ctx context.Context, id string, patch models.HighlightPatch) (models.EnrichedHighlight, error) {
	if err := s.validate.Struct(patch); err != nil {
		return models.EnrichedHighlight{}, err
	}
	h, err := s.store.GetHighlight(ctx, id)
	if err != nil {
		return models.EnrichedHighlight{}, err
	}
	if patch.ProfileIDs != nil {
		if err := s.checkProfiles(ctx, *patch.ProfileIDs); err != nil {
			return models.EnrichedHighlight{}, err
		}
	}

	row := store.Row{}
	if patch.Status != nil {
		row["status"] = *patch.Status
	}
	if patch.RawVideoLink != nil {
		row["raw_video_link"] = *patch.RawVideoLink
	}
	if patch.EditedVideoLink != nil {
		row["edited_video_link"] = *patch.EditedVideoLink
	}
	if len(row) > 0 {
		if h, err = s.store.UpdateHighlight(ctx, id, row); err != nil {
			return models.EnrichedHighlight{}, err
		}
	}

	if patch.ProfileIDs != nil {
		if err := s.store.ReplaceHighlightProfiles(ctx, id, *patch.ProfileIDs); err != nil {
			return models.EnrichedHighlight{}, err
		}
	}
	return s.agg.Enrich(ctx, h), nil
}

func (s *Service) checkProfiles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.store.SocialProfilesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(found))
	for _, p := range found {
		known[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return apperr.Invalid("profile_ids", fmt.Sprintf("unknown social profile %s", id))
		}
	}
	return nil
}

// Delete removes the highlight and everything that references it. It reports
// false when no highlight row was deleted.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.deleteCascade(ctx, []string{id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteForEpisode removes every highlight of an episode with its dependents.
func (s *Service) DeleteForEpisode(ctx context.Context, episodeID string) (int, error) {
	hs, err := s.store.HighlightsByEpisode(ctx, episodeID)
	if err != nil {
		return 0, err
	}
	if len(hs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(hs))
	for i, h := range hs {
		ids[i] = h.ID
	}
	return s.deleteCascade(ctx, ids)
}

func (s *Service) deleteCascade(ctx context.Context, ids []string) (int, error) {
	if err := s.store.DeleteHighlightSegments(ctx, ids); err != nil {
		return 0, err
	}
	if err := s.store.DeleteCommentsByHighlightIDs(ctx, ids); err != nil {
		return 0, err
	}
	if err := s.store.DeleteHighlightProfiles(ctx, ids); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteHighlights(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zerolog.Ctx(ctx).Info().Strs("highlight_ids", ids).Int("deleted", n).Msg("highlights deleted")
	}
	return n, nil
}

// referenceError turns a missing referenced row into a validation failure on field.
func referenceError(field string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Invalid(field, "does not exist")
	}
	return err
}
