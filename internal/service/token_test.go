package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/testentry"
)

func submission(token string, players ...string) *types.ReportSubmission {
	sub := &types.ReportSubmission{
		Token:          token,
		Body:           "aimbot, see attached clip",
		ReasonsBitflag: constant.ReasonHacking,
	}
	for _, id := range players {
		sub.Players = append(sub.Players, types.PlayerSubmission{PlayerID: id, PlayerName: "player " + id})
	}
	return sub
}

func issue(t *testing.T, e *env, c *model.Community) *model.ReportToken {
	t.Helper()
	tok, err := e.Token.IssueToken(context.Background(), &types.TokenRequest{
		AdminID:     c.OwnerID,
		CommunityID: c.ID,
		Platform:    constant.PlatformPC,
	})
	require.NoError(t, err)
	return tok
}

func TestTokenLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := testentry.Community(t, e.db, 100)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	e.Token.SetClock(func() time.Time { return now })

	t1 := issue(t, e, c)
	assert.WithinDuration(t, t0.Add(time.Hour), t1.ExpiresAt, 0)
	assert.Len(t, t1.Value, constant.ReportTokenValueLength)

	now = t0.Add(59 * time.Minute)
	report, err := e.Report.Submit(ctx, submission(t1.Value, steamID(1)))
	require.NoError(t, err)
	assert.Equal(t, t1.ID, report.ID)

	// a fresh token issued at T0 too
	now = t0
	t2 := issue(t, e, c)

	now = t0.Add(61 * time.Minute)
	_, err = e.Report.Submit(ctx, submission(t1.Value, steamID(2)))
	assert.ErrorIs(t, err, bcerr.ErrTokenAlreadyUsed)

	_, err = e.Report.Submit(ctx, submission(t2.Value, steamID(2)))
	assert.ErrorIs(t, err, bcerr.ErrTokenExpired)

	_, err = e.Report.Submit(ctx, submission("definitely-not-a-token", steamID(2)))
	assert.ErrorIs(t, err, bcerr.ErrTokenNotFound)

	_, err = e.Token.ValidateToken(ctx, t2.Value)
	assert.ErrorIs(t, err, bcerr.ErrTokenExpired)
}

func TestIssueTokenChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := testentry.Community(t, e.db, 100)
	other := testentry.Community(t, e.db, 200)

	_, err := e.Token.IssueToken(ctx, &types.TokenRequest{AdminID: 999, CommunityID: c.ID, Platform: constant.PlatformPC})
	assert.ErrorIs(t, err, bcerr.ErrNotFound)

	_, err = e.Token.IssueToken(ctx, &types.TokenRequest{AdminID: other.OwnerID, CommunityID: c.ID, Platform: constant.PlatformPC})
	assert.ErrorIs(t, err, bcerr.ErrInvalidReq)

	// fixtures play on PC only
	_, err = e.Token.IssueToken(ctx, &types.TokenRequest{AdminID: c.OwnerID, CommunityID: c.ID, Platform: constant.PlatformConsole})
	assert.ErrorIs(t, err, bcerr.ErrInvalidReq)

	_, err = e.Token.IssueToken(ctx, &types.TokenRequest{AdminID: c.OwnerID, CommunityID: c.ID, Platform: "mobile"})
	assert.ErrorIs(t, err, bcerr.ErrInvalidReq)
}

func TestConcurrentSubmissionConsumesOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := testentry.Community(t, e.db, 100)
	tok := issue(t, e, c)

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.Report.Submit(ctx, submission(tok.Value, steamID(i+1)))
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, bcerr.ErrTokenAlreadyUsed)
	}
	assert.Equal(t, 1, succeeded)

	report, err := e.Report.Get(ctx, tok.ID)
	require.NoError(t, err)
	assert.Len(t, report.Players, 1)
}

func TestReissueToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := testentry.Community(t, e.db, 100)
	other := testentry.Community(t, e.db, 200)
	tok := issue(t, e, c)

	_, err := e.Report.Submit(ctx, submission(tok.Value, steamID(1)))
	require.NoError(t, err)

	_, err = e.Token.ReissueToken(ctx, tok.ID, other.OwnerID)
	assert.ErrorIs(t, err, bcerr.ErrInvalidReq)

	_, err = e.Token.ReissueToken(ctx, 4242, c.OwnerID)
	assert.ErrorIs(t, err, bcerr.ErrNotFound)

	reissued, err := e.Token.ReissueToken(ctx, tok.ID, c.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, tok.ID, reissued.ID)
	assert.NotEqual(t, tok.Value, reissued.Value)
	assert.False(t, reissued.Consumed())

	_, err = e.Token.ValidateToken(ctx, tok.Value)
	assert.ErrorIs(t, err, bcerr.ErrTokenNotFound)
	_, err = e.Token.ValidateToken(ctx, reissued.Value)
	assert.NoError(t, err)
}
