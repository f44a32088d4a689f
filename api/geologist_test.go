package api_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/rockquest/api"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestFacts_GeologistOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers()

	_, err := env.clientFor(playerUID).AddFact(context.Background(), api.AddFactRequest{FactID: "f1", Title: "t", Description: "d"})
	require.True(t, api.IsForbidden(err))
}

func TestFacts_CRUD(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers()
	ctx := context.Background()
	geo := env.clientFor(geologistUID)
	const factID = "quartz/1 facts"

	_, err := geo.AddFact(ctx, api.AddFactRequest{FactID: factID, Title: "Quartz", Description: "Hard"})
	require.NoError(t, err)

	_, err = geo.EditFact(ctx, factID, api.FactUpdate{Description: utils.Ptr("Mohs 7")})
	require.NoError(t, err)

	req, ok := env.backend.LastRequest()
	require.True(t, ok)
	require.Equal(t, "/geologist/edit-fact/quartz%2F1%20facts", req.Path)
	require.JSONEq(t, `{"description":"Mohs 7"}`, string(req.Body))

	facts, err := env.clientFor(playerUID).GetFacts(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	require.Equal(t, "Quartz", facts[0].Title)
	require.Equal(t, "Mohs 7", facts[0].Description)

	_, err = geo.DeleteFact(ctx, factID)
	require.NoError(t, err)

	_, err = geo.DeleteFact(ctx, factID)
	require.True(t, api.IsNotFound(err))
}

func TestReviewAndVerify(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers()
	ctx := context.Background()
	postID := env.backend.SeedPost(api.Post{RockName: "Schist", UploadedBy: playerUID})
	geo := env.clientFor(geologistUID)

	pending, err := geo.ReviewPendingRocks(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, postID, pending[0].ID)

	_, err = geo.VerifyRock(ctx, postID, api.PostVerification{Action: "maybe"})
	require.ErrorIs(t, err, rqerrors.ErrInvalidRequest)

	msg, err := geo.VerifyRock(ctx, postID, api.PostVerification{Action: api.DecisionReject, Reason: "Looks like slate"})
	require.NoError(t, err)
	require.Equal(t, "Rock rejected", msg.Message)

	pending, err = geo.ReviewPendingRocks(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestReportsModeration(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers()
	ctx := context.Background()
	postID := env.backend.SeedPost(api.Post{RockName: "Limestone", UploadedBy: geologistUID})
	player := env.clientFor(playerUID)
	geo := env.clientFor(geologistUID)

	_, err := player.ReportPost(ctx, postID, "offensive")
	require.NoError(t, err)

	reports, err := geo.GetReportsByStatus(ctx, "")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, api.ReportPending, reports[0].Status)
	require.Equal(t, playerUID, reports[0].ReportedBy)

	req, _ := env.backend.LastRequest()
	require.Equal(t, "pending", req.Query.Get("status"))

	items, err := geo.ListReportedPosts(ctx, api.ReportPending)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Post)
	require.Equal(t, "Limestone", items[0].Post.RockName)

	_, err = geo.DecideReport(ctx, items[0].Key(), api.DecisionApprove)
	require.NoError(t, err)

	approved, err := geo.GetReportsByStatus(ctx, api.ReportApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	feed, err := player.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Empty(t, feed, "upheld report hides the post")

	_, err = geo.DecideReport(ctx, items[0].Key(), "")
	require.ErrorIs(t, err, rqerrors.ErrInvalidRequest)
}
