package types

// CRCONConfig is the configuration payload of a Community RCON integration.
type CRCONConfig struct {
	APIURL    string `json:"apiUrl" validate:"required,url,endswith=/api"`
	APIKey    string `json:"apiKey" validate:"required,max=128"`
	BanlistID string `json:"banlistId" validate:"omitempty,numeric" copier:"-"`
}

// BattleMetricsConfig is the configuration payload of a BattleMetrics integration.
type BattleMetricsConfig struct {
	APIKey         string `json:"apiKey" validate:"required,max=1024"`
	OrganizationID string `json:"organizationId" validate:"required,numeric" copier:"-"`
	BanlistID      string `json:"banlistId" validate:"omitempty,uuid" copier:"-"`
}

// WebhookConfig is the configuration payload of a generic webhook integration.
// Secret signs every delivered payload.
type WebhookConfig struct {
	URL    string `json:"url" validate:"required,url,startswith=http" copier:"-"`
	Secret string `json:"secret" validate:"required,min=16,max=128" copier:"-"`
}
