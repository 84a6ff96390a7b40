package store

import (
	"context"

	"rtrove/internal/models"
)

// SetProjectFundraisingGoal sets the amount a project is raising.
func (s *Store) SetProjectFundraisingGoal(ctx context.Context, projectID string, goal float64) error {
	if goal <= 0 {
		return models.NewValidationError("Fundraising goal must be greater than 0")
	}
	return s.mutate(ctx, "set project fundraising goal", func(u *unit) error {
		i, err := u.project(projectID)
		if err != nil {
			return err
		}
		u.st.projects[i].FundraisingGoal = &goal
		u.setProjects(u.st.projects)
		return nil
	})
}

// GetProjectFundraisingGoal returns the goal and whether one is set.
func (s *Store) GetProjectFundraisingGoal(projectID string) (float64, bool) {
	var goal float64
	var ok bool
	s.view(func(st *state) {
		if i := indexProject(st.projects, projectID); i >= 0 && st.projects[i].FundraisingGoal != nil {
			goal, ok = *st.projects[i].FundraisingGoal, true
		}
	})
	return goal, ok
}

// AddUserContribution appends a pledge to the project's ledger.
func (s *Store) AddUserContribution(ctx context.Context, projectID, userID string, amount float64) (*models.Commitment, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("Contribution amount must be greater than 0")
	}

	var created models.Commitment
	err := s.mutate(ctx, "add user contribution", func(u *unit) error {
		pi, err := u.project(projectID)
		if err != nil {
			return err
		}
		ui, err := u.user(userID)
		if err != nil {
			return err
		}

		created = models.Commitment{
			UserID:    userID,
			Username:  u.st.users[ui].Username,
			Amount:    amount,
			Timestamp: models.Timestamp(s.now().UnixMilli()),
		}
		p := u.st.projects[pi].Clone()
		p.Commitments = append(p.Commitments, created)
		u.st.projects[pi] = p
		u.setProjects(u.st.projects)
		u.recountContributions()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetUserTotalContribution sums userID's pledges to a project.
func (s *Store) GetUserTotalContribution(projectID, userID string) float64 {
	var total float64
	for _, c := range s.GetProjectCommitments(projectID) {
		if c.UserID == userID {
			total += c.Amount
		}
	}
	return total
}

// GetProjectTotalContributions sums every pledge to a project.
func (s *Store) GetProjectTotalContributions(projectID string) float64 {
	var total float64
	for _, c := range s.GetProjectCommitments(projectID) {
		total += c.Amount
	}
	return total
}

// GetProjectCommitments returns a project's ledger, oldest first.
func (s *Store) GetProjectCommitments(projectID string) []models.Commitment {
	out := []models.Commitment{}
	s.view(func(st *state) {
		if i := indexProject(st.projects, projectID); i >= 0 {
			out = append(out, st.projects[i].Commitments...)
		}
	})
	return out
}

// GetCommitmentSummary derives totals and per-user cumulative pledges from
// the ledger. Contributors are listed in order of their first pledge.
func (s *Store) GetCommitmentSummary(projectID string) (*models.CommitmentSummary, error) {
	project, err := s.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	summary := &models.CommitmentSummary{
		ProjectID:    projectID,
		Contributors: []models.ContributorTotal{},
	}
	if project.FundraisingGoal != nil {
		summary.Goal = *project.FundraisingGoal
	}

	byUser := make(map[string]int)
	for _, c := range project.Commitments {
		summary.Total += c.Amount
		i, seen := byUser[c.UserID]
		if !seen {
			i = len(summary.Contributors)
			byUser[c.UserID] = i
			summary.Contributors = append(summary.Contributors, models.ContributorTotal{
				UserID:   c.UserID,
				Username: c.Username,
			})
		}
		summary.Contributors[i].Amount += c.Amount
	}
	for i := range summary.Contributors {
		if summary.Contributors[i].Username == "" {
			summary.Contributors[i].Username = "Unknown User"
		}
		if summary.Total > 0 {
			summary.Contributors[i].Share = summary.Contributors[i].Amount / summary.Total * 100
		}
	}

	if summary.Goal > 0 {
		summary.Remaining = max(summary.Goal-summary.Total, 0)
		summary.Progress = summary.Total / summary.Goal * 100
	}
	return summary, nil
}

// recountContributions recomputes every user's lifetime pledge total from
// the project ledgers.
func (u *unit) recountContributions() {
	totals := make(map[string]float64)
	for _, p := range u.st.projects {
		for _, c := range p.Commitments {
			totals[c.UserID] += c.Amount
		}
	}
	changed := false
	for i := range u.st.users {
		if u.st.users[i].Contributions != totals[u.st.users[i].ID] {
			u.st.users[i].Contributions = totals[u.st.users[i].ID]
			changed = true
		}
	}
	if changed {
		u.setUsers(u.st.users)
	}
}
