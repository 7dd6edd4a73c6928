package model

const (
	// DefaultCpuUsage is nanoseconds of cpu time charged per benchmark unit
	// when an environment has never been measured.
	DefaultCpuUsage = int64(1_000_000_000)

	DefaultMinAcceptedStep = 300.0
)

type Performance struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement:true"`
	EnvironmentID string `gorm:"uniqueIndex;size:255;not null"`

	Value           float64 `gorm:"default:0"`
	MinAcceptedStep float64 `gorm:"default:300"`
	CpuUsage        int64   `gorm:"default:1000000000"`

	CreatedDate  int64 `gorm:"autoCreateTime"`
	ModifiedDate int64 `gorm:"autoUpdateTime"`
}

func (Performance) TableName() string {
	return "performance"
}
