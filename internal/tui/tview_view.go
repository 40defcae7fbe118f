package tui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/lowaak/interval-trainer/internal/app"
	"github.com/lowaak/interval-trainer/internal/session"
	"github.com/lowaak/interval-trainer/internal/workout"
)

// Page names for tview.Pages
const (
	pageCards   = "cards"
	pageRunner  = "runner"
	pageHistory = "history"
)

const helpText = "[yellow]1[white] Cards  |  [yellow]2[white] Runner  |  [yellow]3[white] History  |  " +
	"[yellow]P[white] Next profile  |  [yellow]M[white] Mute  |  [yellow]Esc[white] Quit"

// TviewView implements ViewImpl with tview.
type TviewView struct {
	logger      logrus.FieldLogger
	app         *tview.Application
	currentPage Page

	pages    *tview.Pages
	logView  *tview.TextView
	status   *tview.TextView
	mainFlex *tview.Flex

	cardsFlex       *tview.Flex
	cardsTabWidgets []*tview.Box
	cardList        *tview.List
	cardDetails     *tview.TextView

	runnerFlex  *tview.Flex
	runnerPanel *tview.TextView

	historyFlex       *tview.Flex
	historyTabWidgets []*tview.Box
	historyPanel      *tview.TextView
	rankingsPanel     *tview.TextView

	// written by the state listener, read by the snapshot listener
	mu       sync.Mutex
	state    app.State
	snapshot session.Snapshot
}

func NewTviewView(logger logrus.FieldLogger, application *tview.Application) *TviewView {
	if logger == nil {
		panic("TviewView: logger cannot be nil")
	}
	return &TviewView{
		logger:      logger,
		app:         application,
		currentPage: PageCards,
	}
}

// Initialize sets up the tview widgets
func (ui *TviewView) Initialize(controller *Controller) {
	// No SetChangedFunc with app.Draw() here: the BaseView listeners draw after
	// every update, and drawing from the log writer can hang during shutdown.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	ui.pages = tview.NewPages()
	ui.initCardsPage(controller)
	ui.initRunnerPage()
	ui.initHistoryPage()

	ui.pages.AddPage(pageCards, ui.cardsFlex, true, true)
	ui.pages.AddPage(pageRunner, ui.runnerFlex, true, false)
	ui.pages.AddPage(pageHistory, ui.historyFlex, true, false)

	help := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(helpText)

	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(help, 1, 0, false).
		AddItem(ui.pages, 0, 1, true).
		AddItem(ui.status, 1, 0, false)

	// Main layout: pages on the left, logs on the right
	ui.mainFlex = tview.NewFlex().
		AddItem(left, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)

	ui.setFocusForCurrentPage()
}

func (ui *TviewView) initCardsPage(controller *Controller) {
	ui.cardDetails = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.cardDetails.SetBorder(true).SetTitle(" Card ")

	ui.cardList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Debugf("UI: card selected: index=%d, title=%s", index, mainText)
			controller.OnCardSelected(index)
		}).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.updateCardDetails(index)
		})
	ui.cardList.SetBorder(true).SetTitle(" Cards ")

	ui.cardsTabWidgets = append(ui.cardsTabWidgets, ui.cardList.Box, ui.cardDetails.Box)

	ui.cardsFlex = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.cardList, 0, 1, true).
		AddItem(ui.cardDetails, 0, 1, false)
}

func (ui *TviewView) initRunnerPage() {
	ui.runnerPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.runnerPanel.SetBorder(true).SetTitle(" Runner ")
	ui.runnerPanel.SetText(formatRunner(session.Snapshot{}, ""))

	ui.runnerFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.runnerPanel, 0, 1, true)
}

func (ui *TviewView) initHistoryPage() {
	ui.historyPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	ui.historyPanel.SetBorder(true).SetTitle(" History ")

	ui.rankingsPanel = tview.NewTextView().
		SetDynamicColors(true)
	ui.rankingsPanel.SetBorder(true).SetTitle(" Rankings ")

	ui.historyTabWidgets = append(ui.historyTabWidgets, ui.historyPanel.Box, ui.rankingsPanel.Box)

	ui.historyFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.historyPanel, 0, 2, true).
		AddItem(ui.rankingsPanel, 0, 1, false)
}

// UpdateState refreshes the card list, keeping the selected card, and the
// history page.
func (ui *TviewView) UpdateState(state app.State) {
	ui.mu.Lock()
	prev := ui.state
	ui.state = state
	snapshot := ui.snapshot
	ui.mu.Unlock()

	selectedID := ""
	if idx := ui.cardList.GetCurrentItem(); idx >= 0 && idx < len(prev.Cards) {
		selectedID = prev.Cards[idx].ID
	}

	ui.cardList.Clear()
	selectedIdx := -1
	for i, card := range state.Cards {
		if card.ID == selectedID {
			selectedIdx = i
		}
		ui.cardList.AddItem(tview.Escape(card.Title), formatCardSummary(card), 0, nil)
	}
	if selectedIdx > -1 {
		ui.cardList.SetCurrentItem(selectedIdx)
	}
	ui.updateCardDetails(ui.cardList.GetCurrentItem())

	profile := state.ActiveProfile()
	ui.historyPanel.SetText(formatHistory(state.ProfileHistory(profile.ID), profile))
	ui.rankingsPanel.SetText(formatRankings(state.Rankings(), state.ActiveProfileID))

	// The active profile shows on the runner page
	ui.runnerPanel.SetText(formatRunner(snapshot, profile.Name))
}

func (ui *TviewView) updateCardDetails(index int) {
	ui.mu.Lock()
	cards := ui.state.Cards
	ui.mu.Unlock()

	if index < 0 || index >= len(cards) {
		ui.cardDetails.SetText("\n  [gray]No cards[white]\n")
		return
	}
	ui.cardDetails.SetText(formatCardDetails(cards[index]))
}

func (ui *TviewView) UpdateSnapshot(snapshot session.Snapshot) {
	ui.mu.Lock()
	ui.snapshot = snapshot
	profile := ui.state.ActiveProfile()
	ui.mu.Unlock()

	title := " Runner "
	if snapshot.Kind() == workout.KindReps {
		title = " Sets "
	}
	ui.runnerPanel.SetTitle(title)
	ui.runnerPanel.SetText(formatRunner(snapshot, profile.Name))
}

func (ui *TviewView) SetStatus(status string) {
	ui.status.SetText(" " + tview.Escape(status))
}

// SetPage switches to the specified page
func (ui *TviewView) SetPage(page Page) {
	if ui.currentPage == page {
		return
	}
	ui.currentPage = page

	switch page {
	case PageCards:
		ui.pages.SwitchToPage(pageCards)
	case PageRunner:
		ui.pages.SwitchToPage(pageRunner)
	case PageHistory:
		ui.pages.SwitchToPage(pageHistory)
	}

	ui.setFocusForCurrentPage()
}

func (ui *TviewView) GetCurrentPage() Page {
	return ui.currentPage
}

func (ui *TviewView) tabWidgets() []*tview.Box {
	switch ui.currentPage {
	case PageCards:
		return ui.cardsTabWidgets
	case PageRunner:
		return []*tview.Box{ui.runnerPanel.Box}
	case PageHistory:
		return ui.historyTabWidgets
	default:
		return nil
	}
}

func (ui *TviewView) setFocusForCurrentPage() {
	if widgets := ui.tabWidgets(); len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *TviewView) SetupKeyboardHandlers(controller *Controller) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			controller.OnEscapeKey()
			return nil

		case tcell.KeyTab:
			widgets := ui.tabWidgets()
			for i, w := range widgets {
				if w.HasFocus() {
					ui.app.SetFocus(widgets[(i+1)%len(widgets)])
					break
				}
			}
			return nil

		case tcell.KeyRune:
			if page, ok := PageByKey(event.Rune()); ok {
				// The controller updates the model, which notifies us
				controller.OnPageChange(page)
				return nil
			}
			switch event.Rune() {
			case ' ':
				controller.ToggleRun()
			case 'n':
				controller.SkipPhase()
			case 'x':
				controller.StopRun()
			case 'c':
				controller.CompleteSet()
			case 's':
				controller.SaveRun()
			case 'p':
				controller.NextProfile()
			case 'm':
				controller.ToggleSound()
			default:
				return event
			}
			return nil
		}
		return event
	})
}

func (ui *TviewView) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

func (ui *TviewView) ClearLogView() {
	ui.logView.Clear()
}

func (ui *TviewView) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *TviewView) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *TviewView) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentPage()
	return ui.app.Run()
}

func (ui *TviewView) Stop() {
	ui.app.Stop()
}
