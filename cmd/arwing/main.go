package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/arwing/flight"
	"github.com/plus3/arwing/game"
)

func main() {
	variantName := flag.String("variant", string(flight.Classic), "Game variant: classic or drones.")
	tuningPath := flag.String("tuning", "", "Optional YAML file overriding the flight tuning.")
	assetsDir := flag.String("assets", "", "Directory whose models/ override the built-in models; edits are reloaded live.")
	debug := flag.Bool("debug", false, "Show the ImGui debug overlay.")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error.")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("invalid -log-level: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	variant, err := flight.ParseVariant(*variantName)
	if err != nil {
		log.Fatal(err)
	}

	opts := game.Options{
		Variant:   variant,
		AssetsDir: *assetsDir,
		Logger:    logger,
	}
	if *tuningPath != "" {
		tuning, err := flight.LoadTuning(*tuningPath)
		if err != nil {
			log.Fatal(err)
		}
		opts.Tuning = &tuning
	}

	g, err := game.New(opts, *debug)
	if err != nil {
		log.Fatal(err)
	}

	runErr := ebiten.RunGame(g)
	if err := g.Close(); err != nil {
		logger.Warn("closing asset watcher", "err", err)
	}
	if runErr != nil {
		logger.Error("game exited", "err", runErr)
		os.Exit(1)
	}
}
