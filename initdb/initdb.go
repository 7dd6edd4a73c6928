package initdb

import (
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/rqzrqh/compute_market/model"
	"golang.org/x/xerrors"
	"gorm.io/gorm"
)

var log = logging.Logger("initdb")

// InitDatabase creates the schema on a fresh database and refuses to touch
// one that is already initialized.
func InitDatabase(db *gorm.DB) error {
	if checkExist(db) {
		return xerrors.New("database has been initialized")
	}

	startTime := time.Now()
	defer func() {
		log.Infow("createTables", "duration", time.Since(startTime).String())
	}()

	return CreateTables(db.Debug())
}

func checkExist(db *gorm.DB) bool {
	return db.Migrator().HasTable(&model.LocalRank{})
}

// CreateTables builds the full schema. The test fixture shares it so tests
// run against the real table shapes.
func CreateTables(db *gorm.DB) error {
	return db.AutoMigrate(
		// 1. reputation ledger
		&model.LocalRank{},
		&model.GlobalRank{},
		&model.NeighbourLocRank{},

		// 2. marketplace
		&model.ComputingNode{},
		&model.UsageFactor{},
		&model.TaskPayment{},

		// 3. benchmarks
		&model.Performance{},

		// 4. apps
		&model.AppConfiguration{},
		// PidFile Table is created at the time of program starts
	)
}
