package service

import (
	"context"
	"time"

	"github.com/dchest/uniuri"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/observability"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/util/rekuest"
)

type Token struct {
	DB              *bun.DB
	ReportTokenRepo *repo.ReportToken
	AdminRepo       *repo.Admin
	CommunityRepo   *repo.Community

	ttl time.Duration
	now func() time.Time
}

func NewToken(conf *appconfig.Config, db *bun.DB, reportTokenRepo *repo.ReportToken, adminRepo *repo.Admin, communityRepo *repo.Community) *Token {
	return &Token{
		DB:              db,
		ReportTokenRepo: reportTokenRepo,
		AdminRepo:       adminRepo,
		CommunityRepo:   communityRepo,
		ttl:             conf.ReportTokenTTL,
		now:             time.Now,
	}
}

// SetClock replaces the clock used for issuance and expiry checks.
func (s *Token) SetClock(now func() time.Time) {
	s.now = now
}

func newTokenValue() string {
	return uniuri.NewLen(constant.ReportTokenValueLength)
}

// IssueToken issues a token allowing one report to be submitted on behalf of
// the admin's community.
func (s *Token) IssueToken(ctx context.Context, req *types.TokenRequest) (*model.ReportToken, error) {
	if err := rekuest.ValidStruct(req); err != nil {
		return nil, err
	}

	admin, err := s.AdminRepo.GetAdminByID(ctx, req.AdminID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("admin %d not found", req.AdminID)
	} else if err != nil {
		return nil, err
	}
	if admin.CommunityID != req.CommunityID {
		return nil, bcerr.ErrInvalidReq.Msg("admin %d does not belong to community %d", req.AdminID, req.CommunityID)
	}

	community, err := s.CommunityRepo.GetCommunityByID(ctx, req.CommunityID)
	if err != nil {
		return nil, err
	}
	if !community.Plays(req.Platform) {
		return nil, bcerr.ErrInvalidReq.Msg("community %d does not play on %s", community.ID, req.Platform)
	}
	if s.ttl <= 0 {
		return nil, bcerr.ErrInternalError.Msg("report token time-to-live must be positive")
	}

	now := s.now()
	token := &model.ReportToken{
		Value:       newTokenValue(),
		AdminID:     admin.ID,
		CommunityID: community.ID,
		Platform:    req.Platform,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.ReportTokenRepo.CreateToken(ctx, s.DB, token); err != nil {
		return nil, err
	}
	token.Community = community

	log.Info().
		Str("evt.name", "report.token.issued").
		Int64("community.id", community.ID).
		Int64("admin.id", admin.ID).
		Int64("token.id", token.ID).
		Time("token.expiresAt", token.ExpiresAt).
		Msg("report token issued")

	return token, nil
}

// ReissueToken gives the token of an existing report a new value and expiry
// so that the report can be edited. Previous values of the token stop working.
func (s *Token) ReissueToken(ctx context.Context, reportID, adminID int64) (*model.ReportToken, error) {
	token, err := s.ReportTokenRepo.GetTokenByID(ctx, reportID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("report %d not found", reportID)
	} else if err != nil {
		return nil, err
	}

	admin, err := s.AdminRepo.GetAdminByID(ctx, adminID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("admin %d not found", adminID)
	} else if err != nil {
		return nil, err
	}
	if admin.CommunityID != token.CommunityID {
		return nil, bcerr.ErrInvalidReq.Msg("admin %d does not belong to the reporting community", adminID)
	}

	if err := s.ReportTokenRepo.ReissueToken(ctx, s.DB, token.ID, newTokenValue(), s.now().Add(s.ttl)); err != nil {
		return nil, err
	}

	log.Info().
		Str("evt.name", "report.token.reissued").
		Int64("community.id", token.CommunityID).
		Int64("admin.id", adminID).
		Int64("token.id", token.ID).
		Msg("report token reissued")

	return s.ReportTokenRepo.GetTokenByID(ctx, token.ID)
}

// ValidateToken checks that value names a token usable for submission.
func (s *Token) ValidateToken(ctx context.Context, value string) (*model.ReportToken, error) {
	return s.validate(ctx, s.DB, value)
}

// validate looks the token up within db. Failures are checked in order:
// unknown value, already consumed, expired.
func (s *Token) validate(ctx context.Context, db bun.IDB, value string) (*model.ReportToken, error) {
	token, err := s.ReportTokenRepo.GetTokenByValue(ctx, db, value)
	if errors.Is(err, bcerr.ErrNotFound) {
		observability.ReportTokenConsumption.WithLabelValues("not_found").Inc()
		return nil, bcerr.ErrTokenNotFound
	} else if err != nil {
		return nil, err
	}

	if token.Consumed() {
		observability.ReportTokenConsumption.WithLabelValues("already_used").Inc()
		return nil, bcerr.ErrTokenAlreadyUsed
	}
	if token.Expired(s.now()) {
		observability.ReportTokenConsumption.WithLabelValues("expired").Inc()
		return nil, bcerr.ErrTokenExpired
	}
	return token, nil
}

// consume marks the validated token consumed within tx.
func (s *Token) consume(ctx context.Context, tx bun.IDB, token *model.ReportToken) error {
	if err := s.ReportTokenRepo.ConsumeToken(ctx, tx, token.ID, s.now()); err != nil {
		if errors.Is(err, bcerr.ErrTokenAlreadyUsed) {
			observability.ReportTokenConsumption.WithLabelValues("already_used").Inc()
		}
		return err
	}
	observability.ReportTokenConsumption.WithLabelValues("success").Inc()
	return nil
}
