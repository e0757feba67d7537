package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ravenfell/server/internal/config"
	"github.com/ravenfell/server/internal/data"
	"github.com/ravenfell/server/internal/game"
	"github.com/ravenfell/server/internal/handler"
	gonet "github.com/ravenfell/server/internal/net"
	"github.com/ravenfell/server/internal/persist"
	"github.com/ravenfell/server/internal/scripting"
	"github.com/ravenfell/server/internal/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("RAVENFELL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log.Info("starting", zap.String("server", cfg.Server.Name), zap.Int("id", cfg.Server.ID))

	// 3. Connect to PostgreSQL and run migrations
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelBoot()

	db, err := persist.NewDB(bootCtx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if err := persist.RunMigrations(bootCtx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// 4. Load static data tables
	items, err := data.LoadItemTable(filepath.Join(cfg.Game.DataDir, "item_list.yaml"))
	if err != nil {
		return fmt.Errorf("item table: %w", err)
	}
	monsters, err := data.LoadMonsterTable(filepath.Join(cfg.Game.DataDir, "monster_list.yaml"))
	if err != nil {
		return fmt.Errorf("monster table: %w", err)
	}
	log.Info("data tables loaded",
		zap.Int("item_types", items.Count()),
		zap.Int("monster_types", monsters.Count()))

	// 5. Script engine
	scripts, err := scripting.NewEngine(cfg.Game.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer scripts.Close()

	// 6. Game engine
	metrics := telemetry.NewMetrics()
	g := game.New(game.Deps{
		Config:     cfg,
		Log:        log,
		Monsters:   monsters,
		Items:      items,
		Scripts:    scripts,
		Accounts:   persist.NewAccountRepo(db),
		Characters: persist.NewCharacterRepo(db),
		Metrics:    metrics,
	})

	// 7. Telemetry endpoint
	if cfg.Telemetry.Enabled {
		tsrv := telemetry.NewServer(cfg.Telemetry.BindAddress, metrics, log)
		go tsrv.ListenAndServe()
		defer tsrv.Close()
	}

	// 8. Accept client connections
	router := handler.NewRouter(g, log)
	srv, err := gonet.NewServer(cfg.Network.BindAddress,
		cfg.Network.OutQueueSize, cfg.Network.ReadTimeout, cfg.Network.WriteTimeout,
		router, log)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go srv.AcceptLoop()
	log.Info("accepting connections", zap.String("addr", srv.Addr().String()))

	// 9. Run the engine until a signal arrives
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		g.Run(runCtx)
		close(done)
	}()

	<-runCtx.Done()
	log.Info("shutting down")
	srv.Shutdown()
	<-done
	log.Info("stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
