package dao

import (
	"os"

	"github.com/rqzrqh/compute_market/model"
	"gorm.io/gorm"
)

// GetDatabaseLock creates the pid_file table as a cross-process mutex so two
// daemons never run against one database.
func GetDatabaseLock(db *gorm.DB) error {
	err := db.Migrator().CreateTable(&model.PidFile{})
	if err != nil {
		log.Errorf("GetDatabaseLock failed:%v", err)
		return err
	}

	host, _ := os.Hostname()
	row := model.PidFile{Host: host, Pid: os.Getpid()}
	if err := db.Create(&row).Error; err != nil {
		log.Errorf("GetDatabaseLock failed:%v", err)
		return err
	}

	return nil
}

func ReleaseDatabaseLock(db *gorm.DB) error {
	err := db.Migrator().DropTable(&model.PidFile{})
	log.Infof("delete pid_file result:%v", err)
	return err
}
