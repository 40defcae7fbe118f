package tui

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lowaak/interval-trainer/internal/app"
	"github.com/lowaak/interval-trainer/internal/events"
	"github.com/lowaak/interval-trainer/internal/go_func_utils"
	"github.com/lowaak/interval-trainer/internal/session"
)

// StateSource publishes the user's cards, profiles and history.
type StateSource interface {
	State() app.State
	ListenToState(ch chan<- app.State) func()
}

// SnapshotSource publishes the active run.
type SnapshotSource interface {
	Snapshot() session.Snapshot
	ListenToSnapshots(ch chan<- session.Snapshot) func()
}

// UIState holds what the views need besides the data feeds
type UIState struct {
	Page   Page
	Status string
}

// Model mirrors the application and session feeds for the view and holds the
// UI-only state: the page, a status message and the log tail.
type Model struct {
	logEvent      *events.Feed[string]
	closeEvent    *events.Feed[struct{}]
	uiStateEvent  *events.Feed[UIState]
	stateEvent    *events.Feed[app.State]
	snapshotEvent *events.Feed[session.Snapshot]

	mu       sync.RWMutex
	uiState  UIState
	state    app.State
	snapshot session.Snapshot

	logLines []string
	logMu    sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logrus.FieldLogger
}

const maxLogLines = 1000

func NewModel(states StateSource, runs SnapshotSource, logger logrus.FieldLogger, uiLogChan <-chan string) *Model {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if states == nil || runs == nil {
		panic("UIModel: sources cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		logEvent:      events.NewFeed[string](false),
		closeEvent:    events.NewFeed[struct{}](false),
		uiStateEvent:  events.NewFeed[UIState](true),
		stateEvent:    events.NewFeed[app.State](true),
		snapshotEvent: events.NewFeed[session.Snapshot](true),
		uiState:       UIState{Page: PageCards},
		state:         states.State(),
		snapshot:      runs.Snapshot(),
		logLines:      make([]string, 0, maxLogLines),
		ctx:           ctx,
		cancel:        cancel,
		logger:        logger,
	}
	m.uiStateEvent.Publish(m.uiState)
	m.stateEvent.Publish(m.state)
	m.snapshotEvent.Publish(m.snapshot)

	m.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { m.listenToState(ctx, states) })

	m.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { m.listenToSnapshots(ctx, runs) })

	m.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { m.readFromLogChannel(ctx, uiLogChan) })

	return m
}

// Shutdown stops all goroutines and waits for them to finish
func (m *Model) Shutdown() {
	m.logger.Debugf("UIModel: shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Debugf("UIModel: shutdown complete")
}

func (m *Model) listenToState(ctx context.Context, states StateSource) {
	defer m.wg.Done()
	ch := make(chan app.State, 1)
	unregister := states.ListenToState(ch)
	defer unregister()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			// The feed drops values for a full channel; read the latest
			s := states.State()
			m.mu.Lock()
			m.state = s
			m.mu.Unlock()
			m.stateEvent.Publish(s)
		}
	}
}

func (m *Model) listenToSnapshots(ctx context.Context, runs SnapshotSource) {
	defer m.wg.Done()
	ch := make(chan session.Snapshot, 1)
	unregister := runs.ListenToSnapshots(ch)
	defer unregister()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			s := runs.Snapshot()
			m.mu.Lock()
			m.snapshot = s
			m.mu.Unlock()
			m.snapshotEvent.Publish(s)
		}
	}
}

func (m *Model) readFromLogChannel(ctx context.Context, uiLogChan <-chan string) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-uiLogChan:
			if !ok {
				return
			}
			m.AppendLog(line)
		}
	}
}

// AppendLog adds a line to the log tail, dropping the oldest past maxLogLines.
func (m *Model) AppendLog(line string) {
	m.logMu.Lock()
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logMu.Unlock()
	m.logEvent.Publish(line)
}

// GetLogTail returns up to n of the most recent log lines, oldest first.
func (m *Model) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(m.logLines) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, len(m.logLines)-start)
	copy(out, m.logLines[start:])
	return out
}

func (m *Model) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Subscribe(ch)
}

func (m *Model) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeEvent.Subscribe(ch)
}

// RequestCloseApplication signals that the application should close
func (m *Model) RequestCloseApplication() {
	m.closeEvent.Publish(struct{}{})
}

func (m *Model) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Subscribe(ch)
}

func (m *Model) ListenToState(ch chan<- app.State) func() {
	return m.stateEvent.Subscribe(ch)
}

func (m *Model) ListenToSnapshots(ch chan<- session.Snapshot) func() {
	return m.snapshotEvent.Subscribe(ch)
}

func (m *Model) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

func (m *Model) SetPage(page Page) {
	m.mu.Lock()
	if m.uiState.Page == page {
		m.mu.Unlock()
		return
	}
	m.uiState.Page = page
	s := m.uiState
	m.mu.Unlock()
	m.uiStateEvent.Publish(s)
}

// SetStatus replaces the one-line message under the page.
func (m *Model) SetStatus(status string) {
	m.mu.Lock()
	m.uiState.Status = status
	s := m.uiState
	m.mu.Unlock()
	m.uiStateEvent.Publish(s)
}

func (m *Model) GetState() app.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Model) GetSnapshot() session.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
