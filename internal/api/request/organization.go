package request

type CreateOrganization struct {
	Name   string `json:"name" validate:"required,max=255"`
	Domain string `json:"domain" validate:"omitempty,fqdn"`
}

type UpdateOrganization struct {
	Name   *string `json:"name" validate:"omitempty,max=255"`
	Domain *string `json:"domain" validate:"omitempty,fqdn"`
}
