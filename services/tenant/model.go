package tenant

import "time"

// Legacy client defaults for tenants that never set them.
const (
	DefaultModName = "NOCASH"
	DefaultCredit  = "0"
)

// Tenant is the per-owner panel configuration. The gateway only reads it.
type Tenant struct {
	Owner              string    `gorm:"column:owner;primaryKey"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
	Maintenance        bool      `gorm:"column:maintenance"`
	MaintenanceMessage string    `gorm:"column:maintenance_message"`
	Online             bool      `gorm:"column:online"`
	ModName            string    `gorm:"column:mod_name"`
	Credit             string    `gorm:"column:credit"`
	Secret             string    `gorm:"column:secret"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// Snapshot is the read-only view of a tenant used for a single redemption.
// Secret is never serialized, so cached snapshots carry no signing material.
type Snapshot struct {
	Owner              string `json:"owner"`
	Maintenance        bool   `json:"maintenance"`
	MaintenanceMessage string `json:"maintenance_message"`
	Online             bool   `json:"online"`
	ModName            string `json:"mod_name"`
	Credit             string `json:"credit"`
	Secret             string `json:"-"`
}

func (m *Tenant) ToSnapshot() Snapshot {
	snap := Snapshot{
		Owner:              m.Owner,
		Maintenance:        m.Maintenance,
		MaintenanceMessage: m.MaintenanceMessage,
		Online:             m.Online,
		ModName:            m.ModName,
		Credit:             m.Credit,
		Secret:             m.Secret,
	}
	if snap.ModName == "" {
		snap.ModName = DefaultModName
	}
	if snap.Credit == "" {
		snap.Credit = DefaultCredit
	}
	return snap
}

// Redeemable reports whether keys of this tenant may be redeemed right now.
func (s Snapshot) Redeemable() bool {
	return s.Online && !s.Maintenance
}
