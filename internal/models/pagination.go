package models

type PaginatedResponse struct {
	Data     any  `json:"data"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasMore  bool `json:"hasMore"`
}

// BrowseRequest carries one step of a session-scoped catalog scroll.
type BrowseRequest struct {
	SessionID   string
	Category    string
	SearchQuery string
	NextPage    bool
	Reload      bool
}

// BrowseResponse returns the session's accumulated records so far.
type BrowseResponse struct {
	SessionID string     `json:"sessionId"`
	Data      []*Product `json:"data"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	HasMore   bool       `json:"hasMore"`
}
