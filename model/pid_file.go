package model

// PidFile is the cross-process lock marker. The table existing means a
// daemon owns this database, the row says which one.
type PidFile struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement:true"`
	Host      string `gorm:"size:255"`
	Pid       int
	StartedAt int64 `gorm:"autoCreateTime"`
}

func (PidFile) TableName() string {
	return "pid_file"
}
