// Defines Notion API request and response types used by the scanner.

package notion

import "time"

// PaginatedResponse is the common envelope of list endpoints.
type PaginatedResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// SearchResponse is the response of POST /search filtered to pages.
type SearchResponse = PaginatedResponse[Page]

// SearchFilter defines filters for the search endpoint.
type SearchFilter struct {
	Value    string `json:"value"`    // "page" or "database"
	Property string `json:"property"` // "object"
}

// SearchRequest is the request body for the search endpoint.
type SearchRequest struct {
	Query       string        `json:"query,omitempty"`
	Filter      *SearchFilter `json:"filter,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
	PageSize    int           `json:"page_size,omitempty"`
}

// Page is a Notion page object.
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	CreatedBy      PartialUser              `json:"created_by"`
	LastEditedBy   PartialUser              `json:"last_edited_by"`
	Parent         Parent                   `json:"parent"`
	Archived       bool                     `json:"archived"`
	InTrash        bool                     `json:"in_trash"`
	Properties     map[string]PropertyValue `json:"properties"`
	URL            string                   `json:"url"`
	PublicURL      *string                  `json:"public_url"`
}

// Parent identifies where a page lives.
type Parent struct {
	Type       string `json:"type"` // "database_id", "page_id", "workspace", "block_id"
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	BlockID    string `json:"block_id,omitempty"`
	Workspace  bool   `json:"workspace,omitempty"`
}

// PartialUser is the user reference embedded in pages.
type PartialUser struct {
	Object string `json:"object"`
	ID     string `json:"id"`
}

// PropertyValue is a page property. Only the title payload is decoded;
// other property types are irrelevant to the scan.
type PropertyValue struct {
	ID    string     `json:"id"`
	Type  string     `json:"type"`
	Title []RichText `json:"title,omitempty"`
}

// RichText is a rich text fragment.
type RichText struct {
	Type      string  `json:"type"`
	PlainText string  `json:"plain_text"`
	Href      *string `json:"href,omitempty"`
}

// User is the response of GET /users/me.
type User struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	Type   string `json:"type"` // "person" or "bot"
	Name   string `json:"name"`
	Bot    *Bot   `json:"bot,omitempty"`
}

// Bot carries the integration's workspace metadata.
type Bot struct {
	Owner         BotOwner `json:"owner"`
	WorkspaceName string   `json:"workspace_name"`
}

// BotOwner describes who installed the integration.
type BotOwner struct {
	Type      string `json:"type"` // "workspace" or "user"
	Workspace bool   `json:"workspace,omitempty"`
}

// WorkspaceName returns the bot's workspace name, or "" for non-bot users.
func (u *User) WorkspaceName() string {
	if u == nil || u.Bot == nil {
		return ""
	}
	return u.Bot.WorkspaceName
}
