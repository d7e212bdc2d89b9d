package constant

type IntegrationType string

const (
	IntegrationTypeBattleMetrics IntegrationType = "battlemetrics"
	IntegrationTypeCRCON         IntegrationType = "crcon"
	IntegrationTypeWebhook       IntegrationType = "webhook"
)

var IntegrationTypes = []IntegrationType{
	IntegrationTypeBattleMetrics,
	IntegrationTypeCRCON,
	IntegrationTypeWebhook,
}

func (t IntegrationType) Valid() bool {
	switch t {
	case IntegrationTypeBattleMetrics, IntegrationTypeCRCON, IntegrationTypeWebhook:
		return true
	}
	return false
}

func (t IntegrationType) DisplayName() string {
	switch t {
	case IntegrationTypeBattleMetrics:
		return "BattleMetrics"
	case IntegrationTypeCRCON:
		return "Community RCON"
	case IntegrationTypeWebhook:
		return "Webhook"
	}
	return string(t)
}
