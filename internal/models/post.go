package models

import "time"

// Timestamp is a Unix time in milliseconds, the format feed items are stored in.
type Timestamp int64

// Time converts the timestamp to a time.Time.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t))
}

// Post is a personal feed entry, optionally associated with a project.
type Post struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	ProjectID string        `json:"projectId"`
	Subject   string        `json:"subject"`
	Content   string        `json:"content"`
	CreatedAt Timestamp     `json:"createdAt"`
	Likes     IDSet         `json:"likes"`
	Comments  []PostComment `json:"comments"`
}

// Clone returns a copy of p that shares no slices with it.
func (p Post) Clone() Post {
	if p.Comments != nil {
		p.Comments = append(make([]PostComment, 0, len(p.Comments)), p.Comments...)
	}
	return p
}

// PostComment is a comment on a post. IsOP and IsProjectCreator are computed
// once when the comment is written.
type PostComment struct {
	ID               string    `json:"id"`
	PostID           string    `json:"postId"`
	Content          string    `json:"content"`
	UserID           string    `json:"userId"`
	Username         string    `json:"username"`
	Timestamp        Timestamp `json:"timestamp"`
	IsOP             bool      `json:"isOP"`
	IsProjectCreator bool      `json:"isProjectCreator"`
}
