package model

import "time"

// PageRecord is a Notion page after classification. It is created once per
// page returned by the API and is not modified afterwards.
type PageRecord struct {
	// ID is the Notion page ID.
	ID string `json:"page_id"`

	// Title is the plain-text title. Untitled pages get "Untitled".
	Title string `json:"title"`

	// URL is the page's notion.so URL.
	URL string `json:"url"`

	// PublicURL is the published URL, if Notion reported one.
	PublicURL string `json:"public_url,omitempty"`

	// CreatedTime is when the page was created.
	CreatedTime time.Time `json:"created_time,omitzero"`

	// LastEditedTime is when the page was last edited.
	LastEditedTime time.Time `json:"last_edited_time,omitzero"`

	// CreatedBy is the ID of the user that created the page.
	CreatedBy string `json:"created_by,omitempty"`

	// ParentType is the parent kind: workspace, page_id, database_id or block_id.
	ParentType string `json:"parent_type,omitempty"`

	// Archived reports whether the page is in the trash.
	Archived bool `json:"archived"`

	// Indicators lists the public indicators that fired, in evaluation order.
	Indicators []Indicator `json:"public_indicators"`

	// RiskLevel is derived from len(Indicators).
	RiskLevel RiskLevel `json:"risk_level"`
}

// Flagged reports whether the page belongs in the potential public pages list.
func (p PageRecord) Flagged() bool {
	return p.RiskLevel > RiskLow
}

// HasIndicator reports whether ind fired for this page.
func (p PageRecord) HasIndicator(ind Indicator) bool {
	for _, i := range p.Indicators {
		if i == ind {
			return true
		}
	}
	return false
}
