package tenant

import "errors"

var (
	ErrTenantUnknown   = errors.New("tenant: unknown owner")
	ErrMaintenanceMode = errors.New("tenant: maintenance mode")
)
