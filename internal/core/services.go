package core

type Services struct {
	Organization *OrganizationService
	Agent        *AgentService
	CronLog      *CronLogService
	APIKey       *APIKeyService
}

func NewServices(db DB) *Services {
	return &Services{
		Organization: NewOrganizationService(db),
		Agent:        NewAgentService(db),
		CronLog:      NewCronLogService(db),
		APIKey:       NewAPIKeyService(db),
	}
}
