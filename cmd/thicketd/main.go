// thicketd runs the simulation headless: content compiled from the
// embedded scripts (with disk overrides), a fixed-step tick loop, an
// optional websocket inspector, and hot reload of edited scripts.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/thicket-engine/thicket/audio"
	"github.com/thicket-engine/thicket/content"
	"github.com/thicket-engine/thicket/inspect"
	"github.com/thicket-engine/thicket/sim"
)

type spawnEntry struct {
	Type  string  `mapstructure:"type"`
	X     float64 `mapstructure:"x"`
	Y     float64 `mapstructure:"y"`
	Angle float64 `mapstructure:"angle"`
	Count int     `mapstructure:"count"`
}

func main() {
	viper.SetDefault("tick_rate", 30)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("inspector_addr", "")
	viper.SetDefault("seed", 1)
	viper.SetDefault("audio", false)
	viper.SetDefault("bounds.min_x", -2048.0)
	viper.SetDefault("bounds.min_y", -2048.0)
	viper.SetDefault("bounds.max_x", 2048.0)
	viper.SetDefault("bounds.max_y", 2048.0)

	viper.SetConfigName("thicketd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/thicket")
	viper.SetEnvPrefix("THICKET")
	viper.AutomaticEnv()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Fatal().Err(err).Msg("read config")
		}
	}
	if level, err := zerolog.ParseLevel(viper.GetString("log_level")); err == nil {
		log = log.Level(level)
	}

	types, err := content.LoadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("compile content")
	}
	statuses, err := content.LoadStatuses()
	if err != nil {
		log.Fatal().Err(err).Msg("load statuses")
	}

	bounds := sim.Box{
		Min: cp.Vector{X: viper.GetFloat64("bounds.min_x"), Y: viper.GetFloat64("bounds.min_y")},
		Max: cp.Vector{X: viper.GetFloat64("bounds.max_x"), Y: viper.GetFloat64("bounds.max_y")},
	}

	opts := sim.Options{
		Bounds: bounds,
		Camera: bounds,
		Seed:   uint64(viper.GetInt64("seed")),
		Logger: log,
	}
	if viper.GetBool("audio") {
		player := audio.NewPlayer()
		if err := player.Initialize(); err != nil {
			log.Warn().Err(err).Msg("audio unavailable")
		} else {
			opts.Sound = player
			defer player.Cleanup()
		}
	}

	world := sim.New(opts)
	for _, t := range types {
		if err := world.RegisterType(t); err != nil {
			log.Fatal().Err(err).Str("type", t.Name).Msg("register type")
		}
	}
	for _, st := range statuses {
		world.RegisterStatusType(st)
	}
	log.Info().Int("types", len(types)).Int("statuses", len(statuses)).Msg("content loaded")

	var spawns []spawnEntry
	if err := viper.UnmarshalKey("spawns", &spawns); err != nil {
		log.Fatal().Err(err).Msg("parse spawns")
	}
	for _, e := range spawns {
		count := e.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			if _, err := world.Spawn(e.Type, cp.Vector{X: e.X, Y: e.Y}, e.Angle); err != nil {
				log.Fatal().Err(err).Msg("spawn")
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var inspector *inspect.Server
	if addr := viper.GetString("inspector_addr"); addr != "" {
		inspector = inspect.NewServer(log)
		go func() {
			if err := inspect.Run(ctx, addr, inspector); err != nil {
				log.Error().Err(err).Msg("inspector stopped")
			}
		}()
		log.Info().Str("addr", addr).Msg("inspector listening")
	}

	reload := watchContent(log)

	tickRate := viper.GetFloat64("tick_rate")
	if tickRate <= 0 {
		tickRate = 30
	}
	dt := 1 / tickRate
	ticker := time.NewTicker(time.Duration(float64(time.Second) / tickRate))
	defer ticker.Stop()

	log.Info().Float64("tick_rate", tickRate).Msg("simulation running")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case name := <-reload:
			t, err := content.CompileFile(name)
			if err != nil {
				log.Warn().Err(err).Str("file", name).Msg("reload failed, keeping old type")
				continue
			}
			if err := world.RegisterType(t); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("reload rejected")
				continue
			}
			log.Info().Str("type", t.Name).Msg("type reloaded")
		case <-ticker.C:
			world.Tick(dt)
			if inspector != nil && inspector.ClientCount() > 0 {
				inspector.Publish(world.Snapshot())
			}
		}
	}
}

// watchContent hot-watches the on-disk scripts dir when present. The
// returned channel never closes; without the dir it just stays silent.
func watchContent(log zerolog.Logger) <-chan string {
	out := make(chan string, 4)
	dir := filepath.Join("content", "scripts")
	if _, err := os.Stat(dir); err != nil {
		return out
	}
	w, err := content.WatchScripts(dir)
	if err != nil {
		log.Warn().Err(err).Msg("content watcher unavailable")
		return out
	}
	go func() {
		for {
			select {
			case name, ok := <-w.Changed:
				if !ok {
					return
				}
				out <- name
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("content watcher error")
			}
		}
	}()
	return out
}
