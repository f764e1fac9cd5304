package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeProcessEpisode       = "episode:process"
	TypeSweepPendingEpisodes = "episodes:sweep"
)

type ProcessEpisodeTaskPayload struct {
	EpisodeID            string
	AutoDetectHighlights bool
	PromptIDs            []string
}

func NewProcessEpisodeTask(episodeID string, autoDetect bool, promptIDs []string) (*asynq.Task, error) {
	payload, err := json.Marshal(ProcessEpisodeTaskPayload{
		EpisodeID:            episodeID,
		AutoDetectHighlights: autoDetect,
		PromptIDs:            promptIDs,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProcessEpisode, payload), nil
}

func NewSweepPendingEpisodesTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeSweepPendingEpisodes, nil), nil
}

// ProcessEpisodeOptions keeps at most one queued task per episode.
func ProcessEpisodeOptions(episodeID string) []asynq.Option {
	return []asynq.Option{asynq.TaskID(TypeProcessEpisode + ":" + episodeID), asynq.MaxRetry(5)}
}
