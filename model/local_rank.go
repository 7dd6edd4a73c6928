package model

// LocalRank accumulates first-hand interaction counters about one remote
// node. Counters only grow; trust and efficacy are derived from them on read.
type LocalRank struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement:true"`
	NodeID string `gorm:"uniqueIndex;size:255;not null"`

	PositiveComputed  int64 `gorm:"default:0"`
	NegativeComputed  int64 `gorm:"default:0"`
	WrongComputed     int64 `gorm:"default:0"`
	PositiveRequested int64 `gorm:"default:0"`
	NegativeRequested int64 `gorm:"default:0"`
	PositivePayment   int64 `gorm:"default:0"`
	NegativePayment   int64 `gorm:"default:0"`
	PositiveResource  int64 `gorm:"default:0"`
	NegativeResource  int64 `gorm:"default:0"`

	CreatedDate  int64 `gorm:"autoCreateTime"`
	ModifiedDate int64 `gorm:"autoUpdateTime"`
}

func (LocalRank) TableName() string {
	return "local_rank"
}
