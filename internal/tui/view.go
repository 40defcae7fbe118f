package tui

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lowaak/interval-trainer/internal/app"
	"github.com/lowaak/interval-trainer/internal/go_func_utils"
	"github.com/lowaak/interval-trainer/internal/session"
)

// ViewImpl is the framework-specific part of the UI.
type ViewImpl interface {
	// Initialize is called after construction to set up widgets
	Initialize(controller *Controller)

	// SetupKeyboardHandlers sets up keyboard event handlers
	SetupKeyboardHandlers(controller *Controller)

	// Run starts the UI framework and blocks until it exits
	Run() error

	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	SetPage(page Page)
	GetCurrentPage() Page
	SetStatus(status string)

	// --- Log view (shared across pages) ---

	GetLogViewHeight() int
	ClearLogView()
	WriteLogLine(line string) error

	// UpdateState refreshes the card list, history and rankings
	UpdateState(state app.State)

	// UpdateSnapshot refreshes the runner page
	UpdateSnapshot(snapshot session.Snapshot)
}

// BaseView connects a ViewImpl to the model: every model feed is forwarded to
// the implementation followed by a redraw.
type BaseView struct {
	impl       ViewImpl
	model      *Model
	controller *Controller
	logger     logrus.FieldLogger
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

type NewBaseViewArg struct {
	ViewImpl   ViewImpl
	Model      *Model
	Controller *Controller
	Logger     logrus.FieldLogger
}

func NewBaseView(arg NewBaseViewArg) *BaseView {
	if arg.ViewImpl == nil {
		panic("BaseView: ViewImpl cannot be nil")
	}
	if arg.Model == nil {
		panic("BaseView: Model cannot be nil")
	}
	if arg.Controller == nil {
		panic("BaseView: Controller cannot be nil")
	}
	if arg.Logger == nil {
		panic("BaseView: Logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	base := &BaseView{
		impl:       arg.ViewImpl,
		model:      arg.Model,
		controller: arg.Controller,
		logger:     arg.Logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	base.impl.Initialize(base.controller)
	base.impl.SetupKeyboardHandlers(base.controller)
	base.setupEventListeners()

	base.wg.Add(1)
	go_func_utils.SafeGo(base.logger, func() { base.monitorLogResize() })

	return base
}

// listen runs apply for every notification on a model feed until shutdown.
func listen[T any](base *BaseView, subscribe func(chan<- T) func(), apply func(T)) {
	ch := make(chan T, 1)
	unregister := subscribe(ch)
	base.wg.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.wg.Done()
		defer unregister()
		for {
			select {
			case <-base.ctx.Done():
				return
			case v := <-ch:
				apply(v)
				base.draw()
			}
		}
	})
}

func (base *BaseView) setupEventListeners() {
	listen(base, base.model.ListenToLog, func(string) {
		base.updateLogDisplay()
	})

	// Close is the only listener that does not redraw
	closeChan := make(chan struct{}, 1)
	closeUnregister := base.model.ListenToCloseApplication(closeChan)
	base.wg.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.wg.Done()
		defer closeUnregister()
		select {
		case <-base.ctx.Done():
		case <-closeChan:
			base.impl.Stop()
		}
	})

	listen(base, base.model.ListenToUIState, func(UIState) {
		s := base.model.GetUIState()
		base.impl.SetPage(s.Page)
		base.impl.SetStatus(s.Status)
	})

	listen(base, base.model.ListenToState, func(app.State) {
		base.impl.UpdateState(base.model.GetState())
	})

	listen(base, base.model.ListenToSnapshots, func(session.Snapshot) {
		base.impl.UpdateSnapshot(base.model.GetSnapshot())
	})
}

func (base *BaseView) draw() {
	if err := base.impl.Draw(); err != nil {
		base.logger.Warnf("BaseView: error drawing: %v", err)
	}
}

func (base *BaseView) updateLogDisplay() {
	height := base.impl.GetLogViewHeight()
	if height <= 0 {
		return
	}
	base.impl.ClearLogView()
	for _, line := range base.model.GetLogTail(height) {
		if err := base.impl.WriteLogLine(line + "\n"); err != nil {
			base.logger.Warnf("BaseView: error writing to log view: %v", err)
		}
	}
}

func (base *BaseView) monitorLogResize() {
	defer base.wg.Done()
	var lastHeight int
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-base.ctx.Done():
			return
		case <-ticker.C:
			height := base.impl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.updateLogDisplay()
				base.draw()
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseView) Shutdown() {
	base.logger.Debugf("BaseView: shutting down")
	base.cancel()
	base.wg.Wait()
	base.logger.Debugf("BaseView: shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseView) Run() error {
	return base.impl.Run()
}
