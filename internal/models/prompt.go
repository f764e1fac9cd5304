package models

import "time"

type Prompt struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Version      int       `db:"version" json:"version"`
	TemplateText string    `db:"template_text" json:"template_text"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type PromptCreate struct {
	Name         string `json:"name" validate:"required,max=200"`
	TemplateText string `json:"template_text" validate:"required"`
	IsActive     *bool  `json:"is_active"`
}

type PromptPatch struct {
	TemplateText *string `json:"template_text" validate:"omitempty,min=1"`
	IsActive     *bool   `json:"is_active"`
}

type SocialProfile struct {
	ID            string    `db:"id" json:"id"`
	Platform      string    `db:"platform" json:"platform"`
	ProfileName   string    `db:"profile_name" json:"profile_name"`
	ProfileHandle *string   `db:"profile_handle" json:"profile_handle"`
	ProfileURL    *string   `db:"profile_url" json:"profile_url"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type SocialProfileCreate struct {
	Platform      string  `json:"platform" validate:"required,max=50"`
	ProfileName   string  `json:"profile_name" validate:"required,max=200"`
	ProfileHandle *string `json:"profile_handle"`
	ProfileURL    *string `json:"profile_url" validate:"omitempty,url"`
}
