package model

// AppConfiguration keeps the per-app enabled flag across restarts.
type AppConfiguration struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement:true"`
	AppID   string `gorm:"uniqueIndex;size:255;not null"`
	Enabled bool   `gorm:"type:bool;default:false"`

	CreatedDate  int64 `gorm:"autoCreateTime"`
	ModifiedDate int64 `gorm:"autoUpdateTime"`
}

func (AppConfiguration) TableName() string {
	return "app_configuration"
}
