package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ArticleList struct {
	Articles []Article `json:"articles"`
}

type VideoList struct {
	Videos []Video `json:"videos"`
}

type PodcastList struct {
	Podcasts []Podcast `json:"podcasts"`
}

type CommentList struct {
	Comments []Comment `json:"comments"`
}

type SessionList struct {
	HolderID int64         `json:"holder_id"`
	Sessions []SessionInfo `json:"sessions"`
}

type AuditList struct {
	Entries []AuditEntry `json:"entries"`
}
