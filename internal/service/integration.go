package service

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/jetstream"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/util/rekuest"
)

type Integration struct {
	IntegrationRepo *repo.Integration
	CommunityRepo   *repo.Community
	PlayerBanRepo   *repo.PlayerBan
	Factory         *integration.Factory
	Manager         *integration.Manager
	Events          jetstream.Publisher

	limit           int
	validateTimeout time.Duration
}

func NewIntegration(
	conf *appconfig.Config,
	integrationRepo *repo.Integration,
	communityRepo *repo.Community,
	playerBanRepo *repo.PlayerBan,
	factory *integration.Factory,
	manager *integration.Manager,
	events jetstream.Publisher,
) *Integration {
	return &Integration{
		IntegrationRepo: integrationRepo,
		CommunityRepo:   communityRepo,
		PlayerBanRepo:   playerBanRepo,
		Factory:         factory,
		Manager:         manager,
		Events:          events,
		limit:           conf.MaxIntegrationLimit,
		validateTimeout: conf.IntegrationValidateTimeout,
	}
}

// decodeConfig parses a configuration payload into the shape of typ and
// validates it.
func decodeConfig(typ constant.IntegrationType, payload []byte) (any, error) {
	var shape any
	switch typ {
	case constant.IntegrationTypeCRCON:
		shape = &types.CRCONConfig{}
	case constant.IntegrationTypeBattleMetrics:
		shape = &types.BattleMetricsConfig{}
	case constant.IntegrationTypeWebhook:
		shape = &types.WebhookConfig{}
	default:
		return nil, bcerr.ErrInvalidReq.Msg("unknown integration type %q", typ)
	}

	if err := json.Unmarshal(payload, shape); err != nil {
		return nil, bcerr.ErrInvalidReq.Msg("malformed %s configuration: %s", typ, err.Error())
	}
	if err := rekuest.ValidStruct(shape); err != nil {
		return nil, err
	}
	return shape, nil
}

// applyConfig copies a validated configuration shape onto the row.
func applyConfig(row *model.Integration, shape any) error {
	if err := copier.Copy(row, shape); err != nil {
		return err
	}

	switch c := shape.(type) {
	case *types.CRCONConfig:
		if c.BanlistID != "" {
			row.BanlistID = null.StringFrom(c.BanlistID)
		}
	case *types.BattleMetricsConfig:
		if row.OrganizationID.String != c.OrganizationID {
			// ban lists belong to an organization
			row.BanlistID = null.String{}
		}
		row.OrganizationID = null.StringFrom(c.OrganizationID)
		if c.BanlistID != "" {
			row.BanlistID = null.StringFrom(c.BanlistID)
		}
	case *types.WebhookConfig:
		row.APIURL = c.URL
		row.APIKey = c.Secret
	}
	return nil
}

// Configure registers or reconfigures the integration of the given type for
// the community. The payload is validated against the shape of the type
// before anything is stored, and the configuration is checked against the
// live system before the integration is enabled. A configuration failing the
// live check is stored disabled and a ConfigError is returned.
func (s *Integration) Configure(ctx context.Context, communityID int64, typ constant.IntegrationType, payload []byte) (*model.Integration, error) {
	shape, err := decodeConfig(typ, payload)
	if err != nil {
		return nil, err
	}

	community, err := s.CommunityRepo.GetCommunityByID(ctx, communityID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("community %d not found", communityID)
	} else if err != nil {
		return nil, err
	}

	rows, err := s.IntegrationRepo.GetIntegrationsByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	row, exists := lo.Find(rows, func(r *model.Integration) bool { return r.IntegrationType == typ })
	if !exists {
		if len(rows) >= s.limit {
			return nil, bcerr.ErrLimitReached.Msg("community %d already has %d integrations", communityID, len(rows))
		}
		row = &model.Integration{
			CommunityID:     communityID,
			IntegrationType: typ,
			CreatedAt:       time.Now(),
		}
	}
	if err := applyConfig(row, shape); err != nil {
		return nil, err
	}
	row.Enabled = true
	row.UpdatedAt = time.Now()

	checked, err := s.check(ctx, row, community)
	if err != nil {
		row.Enabled = false
		if saveErr := s.IntegrationRepo.SaveIntegration(ctx, row); saveErr != nil {
			log.Error().
				Err(saveErr).
				Str("evt.name", "integration.save.failed").
				Int64("community.id", communityID).
				Msg("failed to store rejected integration configuration")
		}
		s.Manager.Remove(communityID, typ)
		s.published(ctx, row)
		return nil, err
	}

	if err := s.IntegrationRepo.SaveIntegration(ctx, &checked); err != nil {
		return nil, err
	}
	if err := s.register(&checked); err != nil {
		return nil, err
	}

	log.Info().
		Str("evt.name", "integration.configured").
		Int64("community.id", communityID).
		Int64("integration.id", checked.ID).
		Str("integration.type", string(typ)).
		Msg("integration configured and enabled")
	s.published(ctx, &checked)
	return &checked, nil
}

// check builds the integration from row and validates it against the live
// system. It returns the configuration as amended by the validation, which
// may provision remote resources.
func (s *Integration) check(ctx context.Context, row *model.Integration, community *model.Community) (model.Integration, error) {
	i, err := s.Factory.New(row)
	if err != nil {
		return model.Integration{}, err
	}
	defer i.Close()

	ctx, cancel := context.WithTimeout(ctx, s.validateTimeout)
	defer cancel()
	if err := i.Validate(ctx, community); err != nil {
		var ce *integration.ConfigError
		if !errors.As(err, &ce) {
			err = integration.NewConfigError(row.IntegrationType, "validation failed", err)
		}
		log.Warn().
			Err(err).
			Str("evt.name", "integration.validate.failed").
			Int64("community.id", community.ID).
			Str("integration.type", string(row.IntegrationType)).
			Msg("integration failed validation")
		return model.Integration{}, err
	}
	return i.Config(), nil
}

// register builds the stored row and hands it to the manager.
func (s *Integration) register(row *model.Integration) error {
	i, err := s.Factory.New(row)
	if err != nil {
		return err
	}
	s.Manager.Add(i)
	return nil
}

// Enable re-validates a stored integration and enables it.
func (s *Integration) Enable(ctx context.Context, integrationID int64) (*model.Integration, error) {
	row, err := s.get(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	community, err := s.CommunityRepo.GetCommunityByID(ctx, row.CommunityID)
	if err != nil {
		return nil, err
	}

	row.Enabled = true
	row.UpdatedAt = time.Now()
	checked, err := s.check(ctx, row, community)
	if err != nil {
		return nil, err
	}
	if err := s.IntegrationRepo.SaveIntegration(ctx, &checked); err != nil {
		return nil, err
	}
	if err := s.register(&checked); err != nil {
		return nil, err
	}
	s.published(ctx, &checked)
	return &checked, nil
}

// Disable stops dispatching to the integration. Its configuration and ban
// records are kept.
func (s *Integration) Disable(ctx context.Context, integrationID int64) (*model.Integration, error) {
	row, err := s.get(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	if err := s.IntegrationRepo.SetEnabled(ctx, row.ID, false); err != nil {
		return nil, err
	}
	row.Enabled = false
	s.Manager.Remove(row.CommunityID, row.IntegrationType)
	s.published(ctx, row)
	return row, nil
}

// Remove deletes the integration with its ban records. Bans already applied
// remotely stay in place.
func (s *Integration) Remove(ctx context.Context, integrationID int64) error {
	row, err := s.get(ctx, integrationID)
	if err != nil {
		return err
	}
	s.Manager.Remove(row.CommunityID, row.IntegrationType)
	if err := s.PlayerBanRepo.DeleteBansByIntegration(ctx, row.ID); err != nil {
		return err
	}
	if err := s.IntegrationRepo.DeleteIntegration(ctx, row.ID); err != nil {
		return err
	}

	log.Info().
		Str("evt.name", "integration.removed").
		Int64("community.id", row.CommunityID).
		Int64("integration.id", row.ID).
		Str("integration.type", string(row.IntegrationType)).
		Msg("integration removed")
	row.Enabled = false
	s.published(ctx, row)
	return nil
}

func (s *Integration) List(ctx context.Context, communityID int64) ([]*model.Integration, error) {
	return s.IntegrationRepo.GetIntegrationsByCommunity(ctx, communityID)
}

// InstanceName returns the display name of the remote system the loaded
// integration is connected to.
func (s *Integration) InstanceName(ctx context.Context, communityID int64, typ constant.IntegrationType) (string, error) {
	i, ok := s.Manager.Get(communityID, typ)
	if !ok {
		return "", bcerr.ErrNotFound.Msg("no %s integration loaded for community %d", typ, communityID)
	}
	namer, ok := i.(integration.Namer)
	if !ok {
		return typ.DisplayName(), nil
	}
	return namer.InstanceName(ctx)
}

func (s *Integration) get(ctx context.Context, integrationID int64) (*model.Integration, error) {
	row, err := s.IntegrationRepo.GetIntegrationByID(ctx, integrationID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("integration %d not found", integrationID)
	}
	return row, err
}

func (s *Integration) published(ctx context.Context, row *model.Integration) {
	publish(ctx, s.Events, constant.EventIntegrationUpdate, &types.IntegrationEvent{
		IntegrationID:   row.ID,
		CommunityID:     row.CommunityID,
		IntegrationType: row.IntegrationType,
		Enabled:         row.Enabled,
	})
}
