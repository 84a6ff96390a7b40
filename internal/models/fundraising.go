package models

// Commitment is an immutable pledge toward a project's fundraising goal.
type Commitment struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Amount    float64   `json:"amount"`
	Timestamp Timestamp `json:"timestamp"`
}

// ContributorTotal is one user's cumulative pledge on a project. Share is the
// percentage of the project total it represents.
type ContributorTotal struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Amount   float64 `json:"amount"`
	Share    float64 `json:"share"`
}

// CommitmentSummary is the derived fundraising state of a project. Progress
// is a percentage of Goal and may exceed 100.
type CommitmentSummary struct {
	ProjectID    string             `json:"projectId"`
	Goal         float64            `json:"goal"`
	Total        float64            `json:"total"`
	Remaining    float64            `json:"remaining"`
	Progress     float64            `json:"progress"`
	Contributors []ContributorTotal `json:"contributors"`
}
