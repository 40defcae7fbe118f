package cue

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=../session/player_mocks_test.go -package=session

// Player produces audible and haptic cues. Implementations never fail: a
// device that cannot beep or vibrate simply does nothing.
type Player interface {
	PlayCue(freqHz, durationMs int, volume float64)
	Vibrate(pattern []int)
}

type Nop struct{}

func (Nop) PlayCue(int, int, float64) {}
func (Nop) Vibrate([]int)             {}

// Beeper is satisfied by tcell.Screen.
type Beeper interface {
	Beep() error
}

// Bell plays cues on the terminal bell. The bell has no pitch or length, so
// every tone is a single beep; beeps closer than MinGap are merged.
type Bell struct {
	beeper Beeper
	logger logrus.FieldLogger
	MinGap time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewBell(beeper Beeper, logger logrus.FieldLogger) *Bell {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Bell{
		beeper: beeper,
		logger: logger,
		MinGap: 80 * time.Millisecond,
		now:    time.Now,
	}
}

func (b *Bell) PlayCue(_ int, _ int, volume float64) {
	if b.beeper == nil || volume <= 0 {
		return
	}
	b.mu.Lock()
	now := b.now()
	if !b.last.IsZero() && now.Sub(b.last) < b.MinGap {
		b.mu.Unlock()
		return
	}
	b.last = now
	b.mu.Unlock()

	if err := b.beeper.Beep(); err != nil {
		b.logger.Debugf("Cue: bell failed: %v", err)
	}
}

// Vibrate is a no-op; terminals have no haptics.
func (b *Bell) Vibrate([]int) {}

// Settings are the user's cue preferences.
type Settings struct {
	Sound     bool
	Vibration bool
	Volume    float64
}

type muted struct {
	player   Player
	settings func() Settings
}

// Muted wraps player so that each cue honors the settings current at the time
// it is played.
func Muted(player Player, settings func() Settings) Player {
	return &muted{player: player, settings: settings}
}

func (m *muted) PlayCue(freqHz, durationMs int, volume float64) {
	s := m.settings()
	if !s.Sound {
		return
	}
	m.player.PlayCue(freqHz, durationMs, volume*s.Volume)
}

func (m *muted) Vibrate(pattern []int) {
	if !m.settings().Vibration {
		return
	}
	m.player.Vibrate(pattern)
}
