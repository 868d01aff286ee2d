package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"SpaceArmada/internal/battle"
	"SpaceArmada/internal/config"
	"SpaceArmada/internal/game"
	"SpaceArmada/internal/logging"
	"SpaceArmada/internal/server"
	"SpaceArmada/internal/storage"
	"SpaceArmada/internal/telemetry"
)

func main() {
	configDir := flag.String("config", ".", "directory holding "+config.FileName)
	addr := flag.String("addr", "", "address to listen on (e.g., 127.0.0.1:8080), overrides server.addr")
	run := flag.String("run", "", "run this mission file headless and print the result instead of serving")
	timeout := flag.Float64("timeout", 600, "battle time limit in seconds for -run")
	seed := flag.Int64("seed", 0, "random seed for -run, 0 seeds from the clock")
	flag.Parse()

	if err := config.Load(*configDir, true); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr != "" {
		config.Set("server.addr", *addr)
	}

	var fileOut io.Writer
	logFile, err := openLogFile(config.GetString("logsDir"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "file logging disabled:", err)
	} else if logFile != nil {
		defer logFile.Close()
		fileOut = logFile
	}
	slogManager := logging.NewSlogManager()
	slogManager.Setup(fileOut, config.GetString("logLevel"))
	log := slogManager.Logger()

	if err := realMain(log, fileOut, *run, *timeout, *seed); err != nil {
		log.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func realMain(log *slog.Logger, logFile io.Writer, run string, timeout float64, seed int64) error {
	settings, err := config.GameSettings()
	if err != nil {
		return err
	}

	records, err := storage.Open(config.GetString("storage.path"), recordLogger(logFile))
	if err != nil {
		return err
	}
	defer records.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if run != "" {
		return runHeadless(ctx, log, run, timeout, seed, settings, records)
	}

	return server.StartApp(ctx, config.GetString("server.addr"), server.Dependencies{
		Settings: settings,
		Records:  records,
		Log:      log,
		Hz:       config.SimHz(),
		NewMetrics: func(battleID string) (game.Metrics, error) {
			rec, err := telemetry.NewRecorder(battleID)
			if err != nil {
				return nil, err
			}
			return rec, nil
		},
	})
}

// runHeadless plays a mission file at fixed steps, as fast as possible.
func runHeadless(ctx context.Context, log *slog.Logger, path string, timeout float64, seed int64, settings game.Settings, records game.RecordStore) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading mission: %w", err)
	}
	metrics, err := telemetry.NewRecorder(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	b, err := battle.New(battle.Options{
		Name:     name,
		Mission:  doc,
		Settings: settings,
		Records:  records,
		Log:      log,
		Metrics:  metrics,
		Seed:     seed,
	})
	if err != nil {
		return err
	}
	defer b.Destroy()

	start := time.Now()
	res := b.Run(ctx, 1/config.SimHz(), timeout)
	log.Info("headless battle done", "mission", name, "wall", time.Since(start).String())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func openLogFile(dir string) (*os.File, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("armada.%s.log", time.Now().UTC().Format("20060102_150405"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// recordLogger is the zerolog logger of the record store, console format on
// stdout and plain in the log file.
func recordLogger(file io.Writer) zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}}
	if file != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true})
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Str("component", "records").Logger()
}
