package models

// Chat is a message in a project's flat chat.
type Chat struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"createdAt"`
}
