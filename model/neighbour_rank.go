package model

// NeighbourLocRank stores the most recent trust claim a neighbour reported
// about a third node. One row per (node, about_node) pair, last write wins.
type NeighbourLocRank struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement:true"`
	NodeID      string `gorm:"uniqueIndex:idx_neighbour_about;size:255;not null"`
	AboutNodeID string `gorm:"uniqueIndex:idx_neighbour_about;size:255;not null"`

	RequestingTrustValue float64 `gorm:"default:0"`
	ComputingTrustValue  float64 `gorm:"default:0"`

	CreatedDate  int64 `gorm:"autoCreateTime"`
	ModifiedDate int64 `gorm:"autoUpdateTime"`
}

func (NeighbourLocRank) TableName() string {
	return "neighbour_loc_rank"
}
