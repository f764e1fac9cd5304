package models

import "time"

type Segment struct {
	ID         string    `db:"id" json:"id"`
	EpisodeID  string    `db:"episode_id" json:"episode_id"`
	StartS     float64   `db:"start_s" json:"start_s"`
	EndS       float64   `db:"end_s" json:"end_s"`
	Text       string    `db:"text" json:"text"`
	Confidence float64   `db:"confidence" json:"confidence"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SegmentWithSpeakers is a segment together with its resolved speaker names.
type SegmentWithSpeakers struct {
	Segment
	Speakers []string `json:"speakers"`
}

type Speaker struct {
	ID           string    `db:"id" json:"id"`
	EpisodeID    string    `db:"episode_id" json:"episode_id"`
	SpeakerLabel string    `db:"speaker_label" json:"speaker_label"`
	MappedName   *string   `db:"mapped_name" json:"mapped_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DisplayName is the editor-assigned name when set, otherwise the diarization label.
func (s Speaker) DisplayName() string {
	if s.MappedName != nil && *s.MappedName != "" {
		return *s.MappedName
	}
	return s.SpeakerLabel
}

type SegmentSpeaker struct {
	SegmentID string `db:"segment_id" json:"segment_id"`
	SpeakerID string `db:"speaker_id" json:"speaker_id"`
}

type SpeakerRename struct {
	MappedName string `json:"mapped_name" validate:"required,max=200"`
}
