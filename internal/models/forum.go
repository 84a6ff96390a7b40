package models

// ForumPost is a project-scoped discussion thread.
type ForumPost struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	UserID    string         `json:"userId"`
	Username  string         `json:"username"`
	Timestamp Timestamp      `json:"timestamp"`
	Comments  []ForumComment `json:"comments"`
}

// Clone returns a copy of p that shares no slices with it.
func (p ForumPost) Clone() ForumPost {
	if p.Comments != nil {
		p.Comments = append(make([]ForumComment, 0, len(p.Comments)), p.Comments...)
	}
	return p
}

// ForumComment is a reply in a forum thread. ParentID is nil for top-level comments.
type ForumComment struct {
	ID               string    `json:"id"`
	PostID           string    `json:"postId"`
	Content          string    `json:"content"`
	UserID           string    `json:"userId"`
	Username         string    `json:"username"`
	Timestamp        Timestamp `json:"timestamp"`
	ParentID         *string   `json:"parentId"`
	IsOP             bool      `json:"isOP"`
	IsProjectCreator bool      `json:"isProjectCreator"`
}

// ForumPostPatch holds forum post fields to merge.
type ForumPostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Apply merges the patch into p.
func (patch ForumPostPatch) Apply(p *ForumPost) {
	setIf(&p.Title, patch.Title)
	setIf(&p.Content, patch.Content)
}

// ThreadedComment is a forum comment with its depth in the reply tree.
type ThreadedComment struct {
	ForumComment
	Depth int `json:"depth"`
}
