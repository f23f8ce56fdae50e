// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ai-Chetan/NexusGrid/pkg/debug"
	"github.com/Ai-Chetan/NexusGrid/pkg/env"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/api"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/cache"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db/memory"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db/postgres"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/service"
	"github.com/Ai-Chetan/NexusGrid/pkg/logger"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"
	"github.com/Ai-Chetan/NexusGrid/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type LayoutServerOpts struct {
	IP        string
	HTTPPort  int
	DebugPort int
	LogLevel  string

	DBDriver        string
	DBDSN           string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  int
	DBConnIdleTime  int
	DBAutoMigrate   bool

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	InstructorLabLimit int
	AssistantLabLimit  int
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Start the layout API server",
	Long: `Start the NexusGrid layout server that handles:
- The facility tree (buildings, floors, rooms, equipment)
- Lab and asset records provisioned alongside tree nodes
- Bulk layout saves from the visual editor`,
	Run: runLayoutServer,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	f := layoutCmd.Flags()
	f.String("ip", "0.0.0.0", "IP address to bind to")
	f.Int("http_port", 8080, "HTTP port for the layout API")
	f.Int("debug_port", 8081, "Debug HTTP port (metrics, pprof, probes)")
	f.String("log_level", "info", "Log level (debug, info, warn, error, fatal)")

	f.String("db_driver", "postgres", "Database driver (postgres, memory)")
	f.String("db_dsn", "", "Database connection string")
	f.Int("db_max_open_conns", db.DefaultMaxOpenConns, "Maximum open database connections")
	f.Int("db_max_idle_conns", db.DefaultMaxIdleConns, "Maximum idle database connections")
	f.Int("db_conn_lifetime", db.DefaultConnMaxLifetime, "Connection max lifetime in seconds")
	f.Int("db_conn_idle_time", db.DefaultConnMaxIdleTime, "Connection max idle time in seconds")
	f.Bool("db_auto_migrate", true, "Apply pending schema migrations on startup")

	f.Bool("redis_enabled", false, "Use Redis for the subtree cache")
	f.String("redis_addr", "localhost:6379", "Redis address")
	f.String("redis_password", "", "Redis password")
	f.Int("redis_db", 0, "Redis database number")
	f.Duration("cache_ttl", cache.DefaultTTL, "Subtree cache entry TTL")

	f.Int("instructor_lab_limit", types.DefaultRoleLimits().InstructorLabs, "Max labs per instructor")
	f.Int("assistant_lab_limit", types.DefaultRoleLimits().AssistantLabs, "Max labs per assistant")

	viper.BindPFlags(f)
}

func runLayoutServer(cmd *cobra.Command, args []string) {
	utils.LoadConfiguration("layout", false)
	opts := loadLayoutOpts(cmd)

	if level, err := zerolog.ParseLevel(opts.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	debug.SetNotReady()

	database := openDatabase(opts)
	defer database.Close()

	if opts.DBAutoMigrate {
		if err := database.Migrate(cmd.Context()); err != nil {
			logger.Fatal().Err(err).Msg("failed to run database migrations")
		}
	}

	subtree := openCache(opts)
	defer subtree.Close()

	svc, err := service.New(database, subtree, types.RoleLimits{
		InstructorLabs: opts.InstructorLabLimit,
		AssistantLabs:  opts.AssistantLabLimit,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create layout service")
	}

	httpMux := http.NewServeMux()
	httpMux.Handle("/", api.New(svc))
	httpServer := startHTTPServer(httpMux, opts.IP, opts.HTTPPort)
	debugServer := startHTTPServer(debug.Mux(), opts.IP, opts.DebugPort)

	debug.SetReady()
	waitForShutdown()
	debug.SetNotReady()

	httpServer.Shutdown(cmd.Context())
	debugServer.Shutdown(cmd.Context())
}

func loadLayoutOpts(cmd *cobra.Command) LayoutServerOpts {
	f := NewFlagLoader(cmd)

	return LayoutServerOpts{
		IP:        f.String("ip"),
		HTTPPort:  f.Int("http_port"),
		DebugPort: f.Int("debug_port"),
		LogLevel:  f.String("log_level"),

		DBDriver:       f.String("db_driver"),
		DBDSN:          f.String("db_dsn"),
		DBMaxOpenConns: f.Int("db_max_open_conns"),
		DBMaxIdleConns: f.Int("db_max_idle_conns"),
		DBConnLifetime: f.Int("db_conn_lifetime"),
		DBConnIdleTime: f.Int("db_conn_idle_time"),
		DBAutoMigrate:  f.Bool("db_auto_migrate"),

		RedisEnabled:  f.Bool("redis_enabled"),
		RedisAddr:     f.String("redis_addr"),
		RedisPassword: f.String("redis_password"),
		RedisDB:       f.Int("redis_db"),
		CacheTTL:      f.Duration("cache_ttl"),

		InstructorLabLimit: f.Int("instructor_lab_limit"),
		AssistantLabLimit:  f.Int("assistant_lab_limit"),
	}
}

func openDatabase(opts LayoutServerOpts) db.DB {
	switch opts.DBDriver {
	case "postgres":
		cfg := db.Config{
			DSN:             opts.DBDSN,
			MaxOpenConns:    opts.DBMaxOpenConns,
			MaxIdleConns:    opts.DBMaxIdleConns,
			ConnMaxLifetime: opts.DBConnLifetime,
			ConnMaxIdleTime: opts.DBConnIdleTime,
		}
		store, err := postgres.Open(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open postgres database")
		}
		return store
	case "memory":
		if env.IsProduction() {
			logger.Fatal().Msg("in-memory database is not allowed in production")
		}
		logger.Warn().Msg("using in-memory database; data will not survive restarts")
		return memory.New()
	default:
		logger.Fatal().Str("driver", opts.DBDriver).Msg("unknown database driver")
		return nil
	}
}

func openCache(opts LayoutServerOpts) cache.SubtreeCache {
	if !opts.RedisEnabled {
		return cache.NewMemory(opts.CacheTTL)
	}
	c, err := cache.NewRedis(cache.RedisConfig{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
		TTL:      opts.CacheTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	return c
}

func startHTTPServer(handler http.Handler, ip string, port int) *http.Server {
	listener, err := utils.NewListener(utils.JoinHostPort(ip, port))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create HTTP listener")
	}

	httpServer := &http.Server{Handler: handler}
	go func() {
		logger.Info().Str("http_addr", utils.JoinHostPort(ip, port)).Msg("Starting HTTP server")
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start HTTP server")
		}
	}()
	return httpServer
}

func waitForShutdown() {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan
}
