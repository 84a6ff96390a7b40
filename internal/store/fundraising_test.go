package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtrove/internal/models"
)

func TestFundraising_LedgerScenario(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.store
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	p := mustProject(t, s, alice, "Album")

	require.NoError(t, s.SetProjectFundraisingGoal(ctx, p.ID, 100))
	goal, ok := s.GetProjectFundraisingGoal(p.ID)
	require.True(t, ok)
	assert.Equal(t, 100.0, goal)

	_, err := s.AddUserContribution(ctx, p.ID, bob.ID, 40)
	require.NoError(t, err)
	_, err = s.AddUserContribution(ctx, p.ID, bob.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, 70.0, s.GetUserTotalContribution(p.ID, bob.ID))
	assert.Equal(t, 70.0, s.GetProjectTotalContributions(p.ID))

	ledger := s.GetProjectCommitments(p.ID)
	require.Len(t, ledger, 2)
	assert.Equal(t, 70.0, ledger[0].Amount+ledger[1].Amount)
	assert.Equal(t, "bob", ledger[0].Username)

	b, _ := s.GetUser(bob.ID)
	assert.Equal(t, 70.0, b.Contributions)

	summary, err := s.GetCommitmentSummary(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.Goal)
	assert.Equal(t, 70.0, summary.Total)
	assert.Equal(t, 30.0, summary.Remaining)
	assert.InDelta(t, 70.0, summary.Progress, 1e-9)
	require.Len(t, summary.Contributors, 1)
	assert.Equal(t, 70.0, summary.Contributors[0].Amount)
	assert.InDelta(t, 100.0, summary.Contributors[0].Share, 1e-9)

	reloaded := env.reload(t)
	assert.Equal(t, 70.0, reloaded.GetUserTotalContribution(p.ID, bob.ID))
}

func TestFundraising_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	_, ok := s.GetProjectFundraisingGoal(p.ID)
	assert.False(t, ok)

	assertAppError(t, s.SetProjectFundraisingGoal(ctx, p.ID, 0), models.CodeValidation, "")
	assertAppError(t, s.SetProjectFundraisingGoal(ctx, "missing", 10), models.CodeNotFound, "")

	_, err := s.AddUserContribution(ctx, p.ID, alice.ID, -1)
	assertAppError(t, err, models.CodeValidation, "Contribution amount must be greater than 0")
	_, err = s.AddUserContribution(ctx, p.ID, "ghost", 10)
	assertAppError(t, err, models.CodeNotFound, "User not found")

	assert.Empty(t, s.GetProjectCommitments(p.ID))
	assert.Zero(t, s.GetProjectTotalContributions("missing"))
}

func TestFundraising_DeletedProjectDropsContributions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	p := mustProject(t, s, alice, "Album")

	_, err := s.AddUserContribution(ctx, p.ID, bob.ID, 25)
	require.NoError(t, err)
	require.NoError(t, s.DeleteProject(ctx, p.ID))

	b, _ := s.GetUser(bob.ID)
	assert.Zero(t, b.Contributions)
}
