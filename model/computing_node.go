package model

type ComputingNode struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement:true"`
	NodeID string `gorm:"uniqueIndex;size:255;not null"`
	Name   string `gorm:"size:255"`

	CreatedDate  int64 `gorm:"autoCreateTime"`
	ModifiedDate int64 `gorm:"autoUpdateTime"`
}

func (ComputingNode) TableName() string {
	return "computing_node"
}
