package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/dailyquest/internal/catalog"
	"github.com/abhisek/dailyquest/internal/config"
	"github.com/abhisek/dailyquest/internal/logger"
	"github.com/abhisek/dailyquest/internal/progression"
	"github.com/abhisek/dailyquest/internal/quests"
	"github.com/abhisek/dailyquest/internal/store"
)

// app bundles everything a command needs.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	progress *store.Progression
	lister   store.Lister
	service  *quests.Service
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.log.Sync()
}

// openApp loads configuration, opens the configured store and builds the
// quest service.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if s, _ := cmd.Flags().GetString("store"); s != "" {
		cfg.Store = s
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	remote, err := a.openRemote(cmd)
	if err != nil {
		a.Close()
		return nil, err
	}

	cat, err := catalog.Default()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	retry := store.DefaultRetryConfig()
	retry.MaxAttempts = cfg.CommitAttempts
	a.progress = store.NewProgression(remote, retry, log)

	machine := progression.NewMachine(cat, progression.Periods{
		Active:   cfg.Periods.Active,
		Cooldown: cfg.Periods.Cooldown,
	})
	a.service = quests.NewService(machine, a.progress, nil, log)
	return a, nil
}

func (a *app) openRemote(cmd *cobra.Command) (store.Remote, error) {
	switch a.cfg.Store {
	case config.StoreRedis:
		client := store.NewRedisClient(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err := client.Ping(context.Background()).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", a.cfg.Redis.Addr, err)
		}
		r := store.NewRedis(client, a.cfg.Redis.Prefix)
		a.closers = append(a.closers, r.Close)
		a.lister = r
		return r, nil

	case config.StoreMemory:
		m := store.NewMemory(nil)
		a.lister = m
		return m, nil

	default:
		dbPath, err := resolveDBPath(cmd, a.cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		a.lister = s
		a.log.Debug("sqlite store opened", "path", dbPath)
		return s, nil
	}
}
