package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/phinze/jumpscare/internal/asset"
	"github.com/phinze/jumpscare/internal/audio"
	"github.com/phinze/jumpscare/internal/config"
	"github.com/phinze/jumpscare/internal/coordinator"
	"github.com/phinze/jumpscare/internal/display"
	"github.com/phinze/jumpscare/internal/display/deck"
	"github.com/phinze/jumpscare/internal/display/sdlwin"
	"github.com/phinze/jumpscare/internal/overlay"
	"github.com/veandco/go-sdl2/sdl"
)

// SDL wants every video call on the thread that initialized it.
func init() {
	runtime.LockOSThread()
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"images":           config.KeyImagesDir,
	"music":            config.KeyAudioDir,
	"initial-delay":    config.KeyInitialDelay,
	"period":           config.KeyPeriod,
	"display":          config.KeyDisplay,
	"serial":           config.KeyStreamDeckSerial,
	"fit":              config.KeyFit,
	"log-level":        config.KeyLogLevel,
	"max-canvas-bytes": config.KeyMaxCanvasBytes,
}

func main() {
	configPath := flag.String("config", "", "Config file (default $XDG_CONFIG_HOME/jumpscare/config.yaml)")
	listDecks := flag.Bool("list-decks", false, "List connected Stream Decks and exit")
	flag.String("images", "images", "Directory of overlay images")
	flag.String("music", "music", "Directory of audio clips")
	flag.Duration("initial-delay", coordinator.DefaultInitialDelay, "Delay before the first toggle")
	flag.Duration("period", coordinator.DefaultPeriod, "Time between toggles")
	flag.String("display", config.DisplaySDL, "Display backend (sdl, streamdeck)")
	flag.String("serial", "", "Stream Deck serial number (default: first device)")
	flag.Bool("fit", false, "Scale images down to fit each output")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Int("max-canvas-bytes", config.DefaultMaxCanvasBytes, "Largest canvas the overlay may allocate")
	flag.Parse()

	if *listDecks {
		if err := printDecks(); err != nil {
			log.Fatal("Failed to list Stream Decks", "err", err)
		}
		return
	}

	var opts []config.Option
	if *configPath != "" {
		opts = append(opts, config.WithConfigFile(*configPath))
	}
	opts = append(opts, config.WithOverrides(visitedOverrides()))

	cfg, err := config.Load(opts...)
	if err != nil {
		log.Fatal("Invalid configuration", "err", err)
	}
	log.SetLevel(cfg.LogLevel)

	if err := checkAssets(cfg); err != nil {
		log.Fatal("Unusable asset directory", "err", err)
	}

	log.Info("=== jumpscare ===")
	log.Info("Press Ctrl+C to exit")

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	player, err := audio.NewPlayer()
	if err != nil {
		log.Fatal("Failed to open audio", "err", err)
	}
	defer sdl.Quit()
	defer player.Close()

	switch cfg.Display {
	case config.DisplayStreamDeck:
		err = runStreamDeck(ctx, cfg, player)
	default:
		err = runSDL(ctx, cfg, player)
	}
	if err != nil {
		player.Close()
		sdl.Quit()
		log.Fatal("Overlay stopped", "err", err)
	}
	log.Info("Exiting...")
}

// visitedOverrides returns the flags given on the command line keyed by
// config key, so unset flags never mask the file or environment.
func visitedOverrides() map[string]any {
	overrides := make(map[string]any)
	flag.CommandLine.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if getter, ok := f.Value.(flag.Getter); ok {
			overrides[key] = getter.Get()
		} else {
			overrides[key] = f.Value.String()
		}
	})
	return overrides
}

// checkAssets fails fast on empty or missing asset directories, before a
// backend is opened or a deck is waited for.
func checkAssets(cfg config.Config) error {
	picker := asset.NewDirPicker(nil)
	if err := picker.Check(cfg.ImagesDir); err != nil {
		return fmt.Errorf("image directory: %w", err)
	}
	if err := picker.Check(cfg.AudioDir); err != nil {
		return fmt.Errorf("audio directory: %w", err)
	}
	return nil
}

func printDecks() error {
	decks, err := deck.List()
	if err != nil {
		return err
	}
	if len(decks) == 0 {
		fmt.Println("No Stream Deck devices found")
		return nil
	}
	fmt.Printf("Found %d device(s):\n", len(decks))
	for i, d := range decks {
		fmt.Printf("  %d: %s (serial: %s)\n", i+1, d.Model, d.Serial)
	}
	return nil
}

// runSDL shows the overlay on every monitor until ctx is done or the
// windows are closed.
func runSDL(ctx context.Context, cfg config.Config, player *audio.Player) error {
	backend, err := sdlwin.Open()
	if err != nil {
		return err
	}
	defer backend.Close()

	log.Info("Ready!", "display", cfg.Display, "images", cfg.ImagesDir, "music", cfg.AudioDir)

	err = runSession(ctx, cfg, backend, player)
	if errors.Is(err, display.ErrClosed) {
		log.Info("Windows closed")
		return nil
	}
	return err
}

// runStreamDeck waits for a deck, runs the overlay on it, and starts over
// whenever the deck is unplugged.
func runStreamDeck(ctx context.Context, cfg config.Config, player *audio.Player) error {
	for {
		backend, err := deck.WaitForDevice(ctx, cfg.StreamDeckSerial)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		log.Info("Ready!", "display", cfg.Display, "images", cfg.ImagesDir, "music", cfg.AudioDir)
		err = runSession(ctx, cfg, backend, player)
		closeWithTimeout(backend)

		if ctx.Err() != nil {
			return nil
		}
		if !errors.Is(err, display.ErrDisconnected) {
			return err
		}
		log.Info("Device disconnected, waiting for reconnect...", "err", err)
	}
}

// closeWithTimeout closes the deck without hanging shutdown, since closing
// the HID handle can block indefinitely on some hosts.
func closeWithTimeout(backend coordinator.Backend) {
	done := make(chan struct{})
	go func() {
		backend.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		log.Warn("Device close timed out")
	}
}

// runSession builds a fresh controller for the backend and runs the event
// loop until it ends.
func runSession(ctx context.Context, cfg config.Config, backend coordinator.Backend, player *audio.Player) error {
	ctrl, err := overlay.New(overlay.Config{
		ImageDir:       cfg.ImagesDir,
		AudioDir:       cfg.AudioDir,
		Fit:            cfg.Fit,
		MaxCanvasBytes: cfg.MaxCanvasBytes,
	}, overlay.Collaborators{
		Display: backend,
		Decoder: asset.NewImageDecoder(),
		Player:  player,
		Picker:  asset.NewDirPicker(nil),
	})
	if err != nil {
		return err
	}

	timer := coordinator.NewToggleTimer(cfg.InitialDelay, cfg.Period)
	return coordinator.New(backend, ctrl, timer, 0).Run(ctx)
}
