package models

import (
	"time"
)

// JobRecord is one discovered posting. Records exist only after extraction;
// the database keyed on ID decides whether a sighting is new.
type JobRecord struct {
	ID             string     `json:"job_id"`
	URL            string     `json:"job_url"`
	Title          string     `json:"job_title"`
	Description    string     `json:"job_description"`
	PostedRelative string     `json:"posted_relative,omitempty"`
	PostedAt       *time.Time `json:"posted_date,omitempty"`
	Proposals      string     `json:"job_proposals"`
	Tags           []string   `json:"job_tags"`
}
