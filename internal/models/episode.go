package models

import "time"

const (
	EpisodeStatusPending    = "pending"
	EpisodeStatusProcessing = "processing"
	EpisodeStatusCompleted  = "completed"
	EpisodeStatusFailed     = "failed"
)

type Episode struct {
	ID              string     `db:"id" json:"id"`
	YoutubeURL      string     `db:"youtube_url" json:"youtube_url"`
	Title           string     `db:"title" json:"title"`
	DurationSeconds int        `db:"duration_seconds" json:"duration_seconds"`
	Description     *string    `db:"description" json:"description"`
	RawVideoLink    *string    `db:"raw_video_link" json:"raw_video_link"`
	RecordedAt      *time.Time `db:"recorded_at" json:"recorded_at"`
	PublishedAt     *time.Time `db:"published_at" json:"published_at"`
	FullTranscript  *string    `db:"full_transcript" json:"full_transcript"`
	Status          string     `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type EpisodeIngest struct {
	YoutubeURL           string   `json:"youtube_url" validate:"required,url"`
	AutoDetectHighlights bool     `json:"auto_detect_highlights"`
	PromptIDs            []string `json:"prompt_ids"`
}

// EpisodePatch carries editor-supplied metadata. Nil fields are left untouched.
type EpisodePatch struct {
	Title        *string    `json:"title" validate:"omitempty,min=1"`
	Description  *string    `json:"description"`
	RawVideoLink *string    `json:"raw_video_link" validate:"omitempty,url"`
	RecordedAt   *time.Time `json:"recorded_at"`
	PublishedAt  *time.Time `json:"published_at"`
	Status       *string    `json:"status" validate:"omitempty,oneof=pending processing completed failed"`
}

type EpisodeFilters struct {
	Status string `json:"status" validate:"omitempty,oneof=pending processing completed failed"`
	Limit  int    `json:"limit" validate:"min=1,max=200"`
	Offset int    `json:"offset" validate:"min=0"`
}
