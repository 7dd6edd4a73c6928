package model

const DefaultUsageFactor = 1.0

type UsageFactor struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement:true"`
	ProviderNodeID string `gorm:"uniqueIndex;size:255;not null"` // ref ComputingNode's node_id

	UsageFactor float64 `gorm:"default:1"`

	CreatedDate  int64 `gorm:"autoCreateTime"`
	ModifiedDate int64 `gorm:"autoUpdateTime"`
}

func (UsageFactor) TableName() string {
	return "usage_factor"
}
