package models

import "time"

const (
	HighlightStatusPending  = "pending"
	HighlightStatusApproved = "approved"
	HighlightStatusRejected = "rejected"
	HighlightStatusUsed     = "used"
)

type Highlight struct {
	ID              string    `db:"id" json:"id"`
	EpisodeID       string    `db:"episode_id" json:"episode_id"`
	PromptID        *string   `db:"prompt_id" json:"prompt_id"`
	StartS          float64   `db:"start_s" json:"start_s"`
	EndS            float64   `db:"end_s" json:"end_s"`
	Transcript      string    `db:"transcript" json:"transcript"`
	Status          string    `db:"status" json:"status"`
	RawVideoLink    *string   `db:"raw_video_link" json:"raw_video_link"`
	EditedVideoLink *string   `db:"edited_video_link" json:"edited_video_link"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type HighlightSegment struct {
	HighlightID   string `db:"highlight_id" json:"highlight_id"`
	SegmentID     string `db:"segment_id" json:"segment_id"`
	SequenceOrder int    `db:"sequence_order" json:"sequence_order"`
}

type HighlightComment struct {
	ID          string    `db:"id" json:"id"`
	HighlightID string    `db:"highlight_id" json:"highlight_id"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type HighlightProfile struct {
	HighlightID string `db:"highlight_id" json:"highlight_id"`
	ProfileID   string `db:"profile_id" json:"profile_id"`
}

// EnrichedHighlight is a highlight with its related rows merged in.
type EnrichedHighlight struct {
	Highlight
	Speakers       []string                 `json:"speakers"`
	Comments       []CommentSummary         `json:"comments"`
	Segments       []HighlightSegmentDetail `json:"segments"`
	SegmentIDs     []string                 `json:"segment_ids"`
	Prompt         *PromptSummary           `json:"prompt"`
	SocialProfiles []string                 `json:"social_profiles"`
}

type CommentSummary struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type HighlightSegmentDetail struct {
	ID            string   `json:"id"`
	StartS        float64  `json:"start_s"`
	EndS          float64  `json:"end_s"`
	Text          string   `json:"text"`
	Speakers      []string `json:"speakers"`
	SequenceOrder int      `json:"sequence_order"`
}

type PromptSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type HighlightCreate struct {
	EpisodeID  string  `json:"episode_id" validate:"required"`
	PromptID   *string `json:"prompt_id"`
	StartS     float64 `json:"start_s" validate:"min=0"`
	EndS       float64 `json:"end_s" validate:"gtfield=StartS"`
	Transcript string  `json:"transcript"`
	Status     string  `json:"status" validate:"omitempty,max=32"`
}

// HighlightPatch is a partial update. ProfileIDs, when present, replaces the whole tag set.
type HighlightPatch struct {
	Status          *string   `json:"status" validate:"omitempty,min=1,max=32"`
	RawVideoLink    *string   `json:"raw_video_link" validate:"omitempty,url"`
	EditedVideoLink *string   `json:"edited_video_link" validate:"omitempty,url"`
	ProfileIDs      *[]string `json:"profile_ids"`
}

type HighlightFilters struct {
	EpisodeID string     `json:"episode_id"`
	Status    string     `json:"status"`
	ProfileID string     `json:"profile_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit" validate:"min=1,max=200"`
	Offset    int        `json:"offset" validate:"min=0"`
}

type SegmentLinkRequest struct {
	SegmentID     string `json:"segment_id" validate:"required"`
	SequenceOrder *int   `json:"sequence_order" validate:"omitempty,min=0"`
}

type SegmentReplaceRequest struct {
	SegmentIDs []string `json:"segment_ids"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}
