package activity

import "time"

// History is one row of the panel's key activity history.
type History struct {
	ID        int64     `gorm:"column:id_history;primaryKey;autoIncrement:false"`
	KeysID    string    `gorm:"column:keys_id;index"`
	UserDo    string    `gorm:"column:user_do"`
	Info      string    `gorm:"column:info"`
	Owner     string    `gorm:"column:owner;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (History) TableName() string {
	return "history"
}

// Event is a single redemption-side change to a key.
type Event struct {
	LicenseID string    `json:"license_id"`
	Actor     string    `json:"actor"`
	Info      string    `json:"info"`
	Owner     string    `json:"owner"`
	At        time.Time `json:"at"`
}
