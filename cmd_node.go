package main

import (
	"fmt"
	syslog "log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/stats/view"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rqzrqh/compute_market/config"
	"github.com/rqzrqh/compute_market/metrics"
	"github.com/rqzrqh/compute_market/node"
	"github.com/rqzrqh/compute_market/util"

	_ "net/http/pprof"
)

var cmdNode = &cli.Command{
	Name:  "node",
	Usage: "Start market node",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to toml config file",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "root:123456@tcp(127.0.0.1:3306)/compute_market",
		},
		&cli.StringFlag{
			Name:  "redis",
			Usage: "127.0.0.1:6379",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
		},
	},
	Action: func(cctx *cli.Context) error {
		go func() {
			http.ListenAndServe(":6060", nil) //nolint:errcheck
		}()

		ctx := util.ReqContext(cctx)

		ll := cctx.String("log-level")
		if err := logging.SetLogLevel("*", ll); err != nil {
			return err
		}
		if err := logging.SetLogLevel("rpc", "error"); err != nil {
			return err
		}

		var cfg *config.Config
		var err error
		if path := cctx.String("config"); path != "" {
			cfg, err = config.Load(path)
			if err != nil {
				return err
			}
		} else {
			cfg = config.DefaultConfig()
		}

		newLogger := logger.New(
			syslog.New(os.Stdout, "\r\n", syslog.LstdFlags), // io writer（日志输出的目标，前缀和日志包含的内容——译者注）
			logger.Config{
				SlowThreshold:             1000 * time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true, // 忽略ErrRecordNotFound（记录未找到）错误
				Colorful:                  true,
			},
		)

		db, err := gorm.Open(mysql.Open(cctx.String("db")), &gorm.Config{
			Logger: newLogger,
		})
		if err != nil {
			fmt.Println("failed to connect database ", err)
			os.Exit(0)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			return err
		}
		log.Info("sql ping success")

		redis_addr := cctx.String("redis")
		rds := redis.NewClient(&redis.Options{
			Addr:     redis_addr,
			Password: "",
			DB:       0,
		})
		defer rds.Close()
		pong, err := rds.Ping(ctx).Result()
		if err != nil {
			return err
		}
		log.Info("redis response ", pong)

		if err := view.Register(metrics.DefaultViews...); err != nil {
			return err
		}

		n, err := node.NewNode(ctx, cfg, db, rds)
		if err != nil {
			return err
		}
		n.Start()

		<-ctx.Done()

		n.Stop()

		os.Exit(0)
		return nil
	},
}
