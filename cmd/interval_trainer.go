package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/lowaak/interval-trainer/internal/app"
	"github.com/lowaak/interval-trainer/internal/config"
	"github.com/lowaak/interval-trainer/internal/cue"
	"github.com/lowaak/interval-trainer/internal/export"
	"github.com/lowaak/interval-trainer/internal/logging"
	"github.com/lowaak/interval-trainer/internal/session"
	"github.com/lowaak/interval-trainer/internal/share"
	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/tui"
	"github.com/lowaak/interval-trainer/internal/workout"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "interval-trainer:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	batch := cfg.BatchMode()
	logger, closer := logging.Setup(logging.SetupParams{
		LogFileName:   cfg.LogFile,
		LogToStdout:   batch && cfg.LogStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogJSON,
	})
	defer closer.Close()
	logger.Infof("Starting interval-trainer (data %s, backend %s)", cfg.DataDir, cfg.Backend)

	backend, err := store.OpenBackend(cfg.Backend, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	st := store.New(backend, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warnf("Store: close failed: %v", err)
		}
	}()

	a := app.New(st, logger)
	if cfg.Profile != "" {
		if err := activateProfile(a, cfg.Profile); err != nil {
			return err
		}
	}

	if batch {
		return runBatch(cfg, a, logger)
	}
	return runUI(cfg, a, logger)
}

// activateProfile makes the profile with the given name or id active,
// creating it when no profile matches.
func activateProfile(a *app.App, nameOrID string) error {
	for _, p := range a.State().Profiles {
		if p.ID == nameOrID || strings.EqualFold(p.Name, nameOrID) {
			return a.SetActiveProfile(p.ID)
		}
	}
	p, err := a.AddProfile(nameOrID)
	if err != nil {
		return fmt.Errorf("create profile %q: %w", nameOrID, err)
	}
	return a.SetActiveProfile(p.ID)
}

func runBatch(cfg *config.Config, a *app.App, logger logrus.FieldLogger) error {
	if cfg.ImportToken != "" {
		res, err := a.ImportToken(cfg.ImportToken)
		if app.IsUnrecognized(err) {
			return errors.New("import: the token is not a card or history entry")
		}
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		switch res.Type {
		case share.TypeCard:
			fmt.Printf("Imported card %q\n", res.Card.Title)
		case share.TypeLog:
			fmt.Printf("Imported %q from %s into history\n", res.Log.CardTitle, res.From)
		}
	}

	if cfg.ImportCards != "" {
		if err := importFile(a, cfg.ImportCards); err != nil {
			return err
		}
	}

	if cfg.ExportFormat != "" {
		if err := exportTo(a, cfg.ExportFormat, cfg.ExportOut); err != nil {
			return err
		}
		logger.Infof("Exported %s to %s", cfg.ExportFormat, outName(cfg.ExportOut))
	}
	return nil
}

// importFile reads cards from a YAML or TOML file, or a whole JSON backup.
func importFile(a *app.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	var cards []workout.Card
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		sum, err := a.ImportBackup(data)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		fmt.Printf("Imported %d cards, %d profiles, %d history entries (%d skipped)\n",
			sum.Cards, sum.Profiles, sum.Logs, sum.Skipped)
		return nil
	case ".toml":
		cards, err = export.ParseCardsTOML(data)
	default:
		cards, err = export.ParseCardsYAML(data)
	}
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	added, skipped, err := a.ImportCards(cards)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	fmt.Printf("Imported %d cards (%d skipped)\n", added, skipped)
	return nil
}

func exportTo(a *app.App, format, out string) (err error) {
	var w io.Writer = os.Stdout
	if out != "" {
		f, createErr := os.Create(out)
		if createErr != nil {
			return fmt.Errorf("export: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
		}()
		w = f
	}
	if err = export.Write(w, format, a.ExportData(), time.Now()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func outName(out string) string {
	if out == "" {
		return "stdout"
	}
	return out
}

func runUI(cfg *config.Config, a *app.App, logger *logrus.Logger) error {
	uiLogChan := make(chan string, 256)
	logger.AddHook(logging.NewChannelHook(uiLogChan, logging.GetLevel(cfg.LogLevel)))

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	tviewApp := tview.NewApplication().SetScreen(screen)

	var player cue.Player = cue.Nop{}
	if cfg.Bell {
		player = cue.NewBell(screen, logger)
	}
	player = cue.Muted(player, func() cue.Settings {
		p := a.State().Preferences
		return cue.Settings{Sound: p.Sound, Vibration: p.Vibration, Volume: p.Volume}
	})

	finalSeconds := cfg.FinalSeconds && a.State().Preferences.FinalSeconds
	manager := session.NewManager(session.RealClock(), player, finalSeconds, logger)
	defer manager.Shutdown()

	model := tui.NewModel(a, manager, logger, uiLogChan)
	defer model.Shutdown()

	controller := tui.NewController(model, a, manager, logger)
	defer controller.Shutdown()

	view := tui.NewTviewView(logger, tviewApp)
	base := tui.NewBaseView(tui.NewBaseViewArg{
		ViewImpl:   view,
		Model:      model,
		Controller: controller,
		Logger:     logger,
	})
	defer base.Shutdown()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	runCtx, stopRun := context.WithCancel(sigCtx)

	g := new(errgroup.Group)
	g.Go(func() error {
		defer stopRun()
		return base.Run()
	})
	g.Go(func() error {
		<-runCtx.Done()
		view.Stop()
		return nil
	})
	err = g.Wait()
	logger.Infof("Exiting")
	return err
}
