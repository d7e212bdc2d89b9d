package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/util/rekuest"
)

type Community struct {
	DB            *bun.DB
	CommunityRepo *repo.Community
	AdminRepo     *repo.Admin

	adminLimit int
}

func NewCommunity(conf *appconfig.Config, db *bun.DB, communityRepo *repo.Community, adminRepo *repo.Admin) *Community {
	return &Community{
		DB:            db,
		CommunityRepo: communityRepo,
		AdminRepo:     adminRepo,
		adminLimit:    conf.MaxAdminLimit,
	}
}

// freeAdmin returns the admin if it exists and belongs to no community.
func (s *Community) freeAdmin(ctx context.Context, adminID int64) (*model.Admin, error) {
	admin, err := s.AdminRepo.GetAdminByID(ctx, adminID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if admin.CommunityID != 0 {
		return nil, bcerr.ErrConflict.Msg("admin %d already belongs to community %d", adminID, admin.CommunityID)
	}
	return admin, nil
}

// Create enrolls a community owned by the given admin.
func (s *Community) Create(ctx context.Context, req *types.CommunityCreateRequest) (*model.Community, error) {
	if err := rekuest.ValidStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.freeAdmin(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	now := time.Now()
	community := &model.Community{
		Name:       req.Name,
		Tag:        req.Tag,
		ContactURL: req.ContactURL,
		OwnerID:    req.OwnerID,
		IsPC:       req.IsPC,
		IsConsole:  req.IsConsole,
		CreatedAt:  now,
	}
	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.CommunityRepo.CreateCommunity(ctx, tx, community); err != nil {
			return err
		}
		return s.AdminRepo.UpsertAdmin(ctx, tx, &model.Admin{
			ID:          req.OwnerID,
			Name:        req.OwnerName,
			CommunityID: community.ID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("evt.name", "community.created").
		Int64("community.id", community.ID).
		Int64("admin.id", req.OwnerID).
		Msg("community created")

	return s.Get(ctx, community.ID)
}

func (s *Community) Get(ctx context.Context, communityID int64) (*model.Community, error) {
	community, err := s.CommunityRepo.GetCommunityByID(ctx, communityID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("community %d not found", communityID)
	}
	return community, err
}

// AddAdmin adds an admin to the community. The owner does not count towards
// the admin limit.
func (s *Community) AddAdmin(ctx context.Context, communityID, adminID int64, name string) error {
	if _, err := s.Get(ctx, communityID); err != nil {
		return err
	}
	if _, err := s.freeAdmin(ctx, adminID); err != nil {
		return err
	}

	return s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := s.AdminRepo.CountAdminsOfCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}
		if n-1 >= s.adminLimit {
			return bcerr.ErrLimitReached.Msg("community %d already has %d admins", communityID, n-1)
		}
		return s.AdminRepo.UpsertAdmin(ctx, tx, &model.Admin{
			ID:          adminID,
			Name:        name,
			CommunityID: communityID,
			CreatedAt:   time.Now(),
		})
	})
}

// RemoveAdmin removes a non-owner admin from the community.
func (s *Community) RemoveAdmin(ctx context.Context, communityID, adminID int64) error {
	community, err := s.Get(ctx, communityID)
	if err != nil {
		return err
	}
	if community.OwnerID == adminID {
		return bcerr.ErrInvalidReq.Msg("the owner cannot be removed; transfer ownership first")
	}
	admin, err := s.AdminRepo.GetAdminByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.CommunityID != communityID {
		return bcerr.ErrNotFound.Msg("admin %d is not an admin of community %d", adminID, communityID)
	}
	return s.AdminRepo.SetCommunity(ctx, s.DB, adminID, 0)
}

// TransferOwnership makes another admin of the community its owner.
func (s *Community) TransferOwnership(ctx context.Context, communityID, newOwnerID int64) error {
	if _, err := s.Get(ctx, communityID); err != nil {
		return err
	}
	admin, err := s.AdminRepo.GetAdminByID(ctx, newOwnerID)
	if err != nil {
		return err
	}
	if admin.CommunityID != communityID {
		return bcerr.ErrInvalidReq.Msg("admin %d is not an admin of community %d", newOwnerID, communityID)
	}
	if err := s.CommunityRepo.UpdateOwner(ctx, s.DB, communityID, newOwnerID); err != nil {
		return err
	}

	log.Info().
		Str("evt.name", "community.ownership.transferred").
		Int64("community.id", communityID).
		Int64("admin.id", newOwnerID).
		Msg("community ownership transferred")
	return nil
}
