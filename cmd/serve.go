package cmd

import (
	"github.com/agridocs/cloudapi/internal/cache"
	"github.com/agridocs/cloudapi/internal/config"
	"github.com/agridocs/cloudapi/internal/jobs"
	"github.com/agridocs/cloudapi/internal/model"
	"github.com/agridocs/cloudapi/internal/server"
	"github.com/agridocs/cloudapi/internal/service"
	"github.com/agridocs/cloudapi/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Run: func(cmd *cobra.Command, args []string) {
		cnf := config.LoadConfig()
		config.SetupLogger(cnf)

		db := config.GetDb(cnf)

		// tables are verified/created on startup
		if err := model.Migrate(db); err != nil {
			logrus.Fatalf("migration failed: %v", err)
		}

		st := store.NewGormStore(db)

		var dc cache.DocumentCache = cache.NewNop()
		if cnf.RedisAddr != "" {
			dc = cache.NewRedis(cnf.RedisAddr)

			executor := jobs.NewTaskExecutor([]jobs.Task{
				jobs.NewCountSyncTask(cnf.CacheSyncCron, st, dc),
			})
			executor.Run()
			defer executor.Stop()
		}

		svc := service.NewDocumentService(st, dc)

		if err := server.New(cnf, svc).Start(); err != nil {
			logrus.Fatalf("server shutdown failed: %v", err)
		}
	},
}
