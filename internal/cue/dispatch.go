package cue

import (
	"github.com/lowaak/interval-trainer/internal/workout"
)

type Tone struct {
	FreqHz     int
	DurationMs int
}

type Sound struct {
	Tones     []Tone
	Volume    float64
	Vibration []int
}

// Sounds maps each runner cue to what is played for it.
var Sounds = map[workout.CueKind]Sound{
	workout.CuePhaseStart:   {Tones: []Tone{{880, 250}}, Volume: 0.8, Vibration: []int{120}},
	workout.CueCountdown:    {Tones: []Tone{{660, 120}}, Volume: 0.5},
	workout.CueGo:           {Tones: []Tone{{990, 350}}, Volume: 1, Vibration: []int{250}},
	workout.CueFinalSeconds: {Tones: []Tone{{520, 90}}, Volume: 0.4},
	workout.CueFinished:     {Tones: []Tone{{660, 200}, {880, 200}, {990, 400}}, Volume: 1, Vibration: []int{200, 100, 200}},
}

// Dispatch plays cues in order. Unknown kinds are ignored.
func Dispatch(player Player, cues []workout.Cue) {
	if player == nil {
		return
	}
	for _, c := range cues {
		sound, ok := Sounds[c.Kind]
		if !ok {
			continue
		}
		for _, t := range sound.Tones {
			player.PlayCue(t.FreqHz, t.DurationMs, sound.Volume)
		}
		if len(sound.Vibration) > 0 {
			player.Vibrate(sound.Vibration)
		}
	}
}
