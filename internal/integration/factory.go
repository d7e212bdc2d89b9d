package integration

import (
	"net/http"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/util/rekuest"
)

// Factory builds integrations from persisted configuration rows.
type Factory struct {
	client           *http.Client
	battleMetricsURL string
}

func NewFactory(conf *appconfig.Config) *Factory {
	return &Factory{
		client:           NewHTTPClient(),
		battleMetricsURL: conf.BattleMetricsAPIURL,
	}
}

// NewFactoryWithClient is NewFactory with a custom HTTP client and
// BattleMetrics API base URL.
func NewFactoryWithClient(client *http.Client, battleMetricsURL string) *Factory {
	return &Factory{client: client, battleMetricsURL: battleMetricsURL}
}

// ConfigShape returns the configuration payload of row in the shape expected
// by its integration type.
func ConfigShape(row *model.Integration) (any, error) {
	switch row.IntegrationType {
	case constant.IntegrationTypeCRCON:
		return &types.CRCONConfig{
			APIURL:    row.APIURL,
			APIKey:    row.APIKey,
			BanlistID: row.BanlistID.String,
		}, nil
	case constant.IntegrationTypeBattleMetrics:
		return &types.BattleMetricsConfig{
			APIKey:         row.APIKey,
			OrganizationID: row.OrganizationID.String,
			BanlistID:      row.BanlistID.String,
		}, nil
	case constant.IntegrationTypeWebhook:
		return &types.WebhookConfig{
			URL:    row.APIURL,
			Secret: row.APIKey,
		}, nil
	}
	return nil, NewConfigError(row.IntegrationType, "unknown integration type", nil)
}

// New validates the shape of row and builds the matching integration. It
// makes no network calls.
func (f *Factory) New(row *model.Integration) (Integration, error) {
	shape, err := ConfigShape(row)
	if err != nil {
		return nil, err
	}
	if err := rekuest.ValidStruct(shape); err != nil {
		return nil, NewConfigError(row.IntegrationType, "invalid configuration", err)
	}

	switch row.IntegrationType {
	case constant.IntegrationTypeCRCON:
		return NewCRCON(*row, f.client), nil
	case constant.IntegrationTypeBattleMetrics:
		return NewBattleMetrics(*row, f.battleMetricsURL, f.client), nil
	default:
		return NewWebhook(*row, f.client), nil
	}
}
