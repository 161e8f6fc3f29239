package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/VanZoel112/vzoelupgrade-sub000/internal/modules/lock"
	_ "github.com/VanZoel112/vzoelupgrade-sub000/internal/modules/tag"
	_ "github.com/VanZoel112/vzoelupgrade-sub000/internal/modules/welcome"
	_ "github.com/VanZoel112/vzoelupgrade-sub000/internal/plugins/ping"
	_ "github.com/VanZoel112/vzoelupgrade-sub000/internal/plugins/settings"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/auth"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/config"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/dispatch"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/logging"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/oplog"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/plugin"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/privacy"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/storage"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/version"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		fallback := logging.Setup("")
		fallback.Fatal().Err(err).Msg("configuration error")
	}

	log := logging.Setup(cfg.LogFilePath)
	log.Info().Str("version", version.AppVersion).Msgf("Starting %s...", version.AppName)

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open storage")
	}
	defer store.Close()

	oplogStore, err := oplog.Open(cfg.OplogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open oplog")
	}
	defer oplogStore.Close()

	client, err := telegram.NewClient(cfg.BotToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not authorize bot")
	}

	sink := oplog.NewSink(oplogStore, client, cfg.LogChannelID, log)

	app := &command.App{
		Config:    cfg,
		Log:       log,
		Transport: client,
		Storage:   store,
		Privacy:   privacy.New(cfg.EnablePrivacySystem, store, log),
		Registry:  command.NewRegistry(log),
		Auth:      auth.NewResolver(cfg, log),
		Oplog:     sink,
		StartedAt: time.Now(),
	}

	loader := plugin.NewLoader(log,
		plugin.WithEnabled(cfg.EnabledPlugins),
		plugin.WithDisabled(cfg.DisabledPlugins),
	)
	app.Reload = func(ctx context.Context) (loaded, failed int) {
		for _, res := range loader.Load(ctx, app) {
			if res.Loaded() {
				loaded++
			} else {
				failed++
			}
		}
		return loaded, failed
	}

	for _, res := range loader.Load(ctx, app) {
		if !res.Loaded() {
			log.Warn().Err(res.Err).Str("plugin", res.Name).Msg("extension skipped")
		}
	}

	pipeline := dispatch.New(app, sink)
	pipeline.RegisterBuiltins()
	pipeline.Acknowledge("/tag")

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Run(ctx, pipeline)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("bot error")
		}
		cancel()
	}

	log.Info().Msgf("%s exited cleanly", version.AppName)
}
