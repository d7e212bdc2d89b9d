package respstats

import (
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
)

func banned(prID, communityID int64) *model.PlayerReportResponse {
	return &model.PlayerReportResponse{PlayerReportID: prID, CommunityID: communityID, Banned: true}
}

func rejected(prID, communityID int64, reason constant.RejectReason) *model.PlayerReportResponse {
	return &model.PlayerReportResponse{PlayerReportID: prID, CommunityID: communityID, RejectReason: null.StringFrom(string(reason))}
}

func pending(prID, communityID int64) *model.PlayerReportResponse {
	return &model.PlayerReportResponse{PlayerReportID: prID, CommunityID: communityID}
}

func TestComputeZeroResponses(t *testing.T) {
	stats := Compute([]int64{1, 2}, nil)

	assert.Len(t, stats, 2)
	for _, id := range []int64{1, 2} {
		s := stats[id]
		assert.Equal(t, id, s.PlayerReportID)
		assert.Zero(t, s.NumBanned)
		assert.Zero(t, s.NumRejected)
		assert.Zero(t, s.NumPending)
		assert.Empty(t, s.RejectReasons)
	}
}

func TestComputeTallies(t *testing.T) {
	responses := []*model.PlayerReportResponse{
		banned(1, 10),
		banned(1, 11),
		rejected(1, 12, constant.RejectReasonInsufficient),
		rejected(2, 10, constant.RejectReasonInconclusive),
		rejected(2, 11, constant.RejectReasonInconclusive),
		pending(2, 12),
		banned(99, 10),
	}

	stats := Compute([]int64{1, 2}, responses)

	assert.Len(t, stats, 2)
	assert.Equal(t, 2, stats[1].NumBanned)
	assert.Equal(t, 1, stats[1].NumRejected)
	assert.Equal(t, 1, stats[1].RejectReasons[constant.RejectReasonInsufficient])
	assert.Equal(t, 0, stats[2].NumBanned)
	assert.Equal(t, 2, stats[2].NumRejected)
	assert.Equal(t, 1, stats[2].NumPending)
	assert.Equal(t, 2, stats[2].RejectReasons[constant.RejectReasonInconclusive])
}

func TestComputeIsOrderInsensitiveAndIdempotent(t *testing.T) {
	responses := []*model.PlayerReportResponse{
		banned(1, 10),
		rejected(1, 11, constant.RejectReasonInsufficient),
		rejected(1, 12, constant.RejectReasonInconclusive),
		pending(1, 13),
		banned(2, 10),
	}
	ids := []int64{1, 2, 3}

	want := Compute(ids, responses)
	assert.Equal(t, want, Compute(ids, responses))

	shuffled := lo.Shuffle(append([]*model.PlayerReportResponse{}, responses...))
	assert.Equal(t, want, Compute(ids, shuffled))
}

func TestSummarizePartitionsPlayers(t *testing.T) {
	report := &model.Report{
		ID: 7,
		Players: []*model.PlayerReport{
			{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4},
		},
	}
	responses := []*model.PlayerReportResponse{
		banned(1, 10),
		rejected(1, 11, constant.RejectReasonInsufficient),
		rejected(2, 10, constant.RejectReasonInconclusive),
		pending(3, 10),
	}

	summary := ForReport(report, responses)

	assert.Equal(t, int64(7), summary.ReportID)
	assert.Equal(t, 4, summary.NumPlayers)
	assert.Equal(t, 1, summary.NumBanned)
	assert.Equal(t, 1, summary.NumRejected)
	assert.Equal(t, 2, summary.NumPending)
	assert.Equal(t, summary.NumPlayers, summary.NumBanned+summary.NumRejected+summary.NumPending)
	assert.Equal(t, 3, summary.TotalResponses())
	assert.Equal(t, 2, summary.TotalRejects())
}

func TestSummarizeInvariantHoldsForRandomResponseSets(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		players := r.Intn(6) + 1
		report := &model.Report{ID: int64(i)}
		for p := 1; p <= players; p++ {
			report.Players = append(report.Players, &model.PlayerReport{ID: int64(p)})
		}

		var responses []*model.PlayerReportResponse
		for c := 0; c < r.Intn(30); c++ {
			prID := int64(r.Intn(players) + 1)
			switch r.Intn(3) {
			case 0:
				responses = append(responses, banned(prID, int64(c)))
			case 1:
				responses = append(responses, rejected(prID, int64(c), constant.RejectReasons[r.Intn(2)]))
			default:
				responses = append(responses, pending(prID, int64(c)))
			}
		}

		s := ForReport(report, responses)
		assert.Equal(t, players, s.NumBanned+s.NumRejected+s.NumPending)
	}
}
