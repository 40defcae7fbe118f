package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lowaak/interval-trainer/internal/workout"
)

// Duration is written as "m:ss" and read from either "m:ss" or a number of
// seconds, so card files can be edited by hand.
type Duration int

func (d Duration) MarshalText() ([]byte, error) {
	sec := max(int(d), 0)
	return []byte(fmt.Sprintf("%d:%02d", sec/60, sec%60)), nil
}

func (d *Duration) parse(s string) error {
	sec, err := workout.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(sec)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		return d.parse(fmt.Sprint(x))
	case float64:
		return d.parse(fmt.Sprint(x))
	case string:
		return d.parse(x)
	default:
		return fmt.Errorf("duration: unexpected %T", v)
	}
}

type TimingDoc struct {
	Warmup          Duration `yaml:"warmup,omitempty" toml:"warmup,omitempty"`
	Work            Duration `yaml:"work" toml:"work"`
	RestBetweenReps Duration `yaml:"rest_between_reps,omitempty" toml:"rest_between_reps,omitempty"`
	RepsPerSet      int      `yaml:"reps_per_set,omitempty" toml:"reps_per_set,omitempty"`
	RestBetweenSets Duration `yaml:"rest_between_sets,omitempty" toml:"rest_between_sets,omitempty"`
	Sets            int      `yaml:"sets,omitempty" toml:"sets,omitempty"`
	Cooldown        Duration `yaml:"cooldown,omitempty" toml:"cooldown,omitempty"`
}

// CardDoc is the hand-editable card shape of the YAML and TOML files.
type CardDoc struct {
	Title     string             `yaml:"title" toml:"title"`
	Kind      string             `yaml:"kind" toml:"kind"`
	Timing    *TimingDoc         `yaml:"timing,omitempty" toml:"timing,omitempty"`
	Exercise  string             `yaml:"exercise,omitempty" toml:"exercise,omitempty"`
	Overrides []workout.Exercise `yaml:"overrides,omitempty" toml:"overrides,omitempty"`

	Sets            []workout.RepSet `yaml:"sets,omitempty" toml:"sets,omitempty"`
	RestBetweenSets Duration         `yaml:"rest_between_sets,omitempty" toml:"rest_between_sets,omitempty"`
	Warmup          Duration         `yaml:"warmup,omitempty" toml:"warmup,omitempty"`
	Cooldown        Duration         `yaml:"cooldown,omitempty" toml:"cooldown,omitempty"`
	TargetSet       Duration         `yaml:"target_set,omitempty" toml:"target_set,omitempty"`
}

type CardsFile struct {
	Cards []CardDoc `yaml:"cards" toml:"cards"`
}

func cardToDoc(c workout.Card) CardDoc {
	doc := CardDoc{Title: c.Title, Kind: string(c.Kind())}
	switch body := c.Body.(type) {
	case workout.TimeBody:
		t := body.Timing
		doc.Timing = &TimingDoc{
			Warmup:          Duration(t.WarmupSec),
			Work:            Duration(t.WorkSec),
			RestBetweenReps: Duration(t.RestBetweenRepsSec),
			RepsPerSet:      t.RepsPerSet,
			RestBetweenSets: Duration(t.RestBetweenSetsSec),
			Sets:            t.Sets,
			Cooldown:        Duration(t.CooldownSec),
		}
		doc.Exercise = body.Exercise
		doc.Overrides = body.Overrides
	case workout.RepBody:
		doc.Sets = body.Sets
		doc.RestBetweenSets = Duration(body.RestBetweenSetsSec)
		doc.Warmup = Duration(body.WarmupSec)
		doc.Cooldown = Duration(body.CooldownSec)
		doc.TargetSet = Duration(body.TargetSetSec)
	}
	return doc
}

// docToCard returns a card without id or timestamps; the importer assigns them.
func docToCard(doc CardDoc) (workout.Card, error) {
	card := workout.Card{Title: strings.TrimSpace(doc.Title), Version: 1}
	kind := workout.Kind(strings.ToLower(strings.TrimSpace(doc.Kind)))
	if kind == "" {
		if doc.Timing != nil {
			kind = workout.KindTime
		} else if len(doc.Sets) > 0 {
			kind = workout.KindReps
		}
	}
	switch kind {
	case workout.KindTime:
		var t TimingDoc
		if doc.Timing != nil {
			t = *doc.Timing
		}
		timing := workout.TimingConfig{
			WarmupSec:          int(t.Warmup),
			WorkSec:            int(t.Work),
			RestBetweenRepsSec: int(t.RestBetweenReps),
			RepsPerSet:         t.RepsPerSet,
			RestBetweenSetsSec: int(t.RestBetweenSets),
			Sets:               t.Sets,
			CooldownSec:        int(t.Cooldown),
		}.Clamped()
		body := workout.TimeBody{Timing: timing, Exercise: strings.TrimSpace(doc.Exercise)}
		if len(doc.Overrides) > 0 {
			body.Overrides = workout.NormalizeOverrides(doc.Overrides, timing.Sets)
		}
		card.Body = body
	case workout.KindReps:
		card.Body = workout.RepBody{
			Sets:               doc.Sets,
			RestBetweenSetsSec: int(doc.RestBetweenSets),
			WarmupSec:          int(doc.Warmup),
			CooldownSec:        int(doc.Cooldown),
			TargetSetSec:       int(doc.TargetSet),
		}
	default:
		return workout.Card{}, fmt.Errorf("card %q: unknown kind %q", doc.Title, doc.Kind)
	}
	return card, nil
}

func docsToCards(docs []CardDoc) ([]workout.Card, error) {
	cards := make([]workout.Card, 0, len(docs))
	for _, d := range docs {
		c, err := docToCard(d)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func cardsFile(cards []workout.Card) CardsFile {
	f := CardsFile{Cards: make([]CardDoc, 0, len(cards))}
	for _, c := range cards {
		f.Cards = append(f.Cards, cardToDoc(c))
	}
	return f
}

func WriteCardsYAML(w io.Writer, cards []workout.Card) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cardsFile(cards)); err != nil {
		return fmt.Errorf("encoding cards yaml: %w", err)
	}
	return enc.Close()
}

func ParseCardsYAML(data []byte) ([]workout.Card, error) {
	var f CardsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing cards yaml: %w", err)
	}
	return docsToCards(f.Cards)
}

func WriteCardsTOML(w io.Writer, cards []workout.Card) error {
	if err := toml.NewEncoder(w).Encode(cardsFile(cards)); err != nil {
		return fmt.Errorf("encoding cards toml: %w", err)
	}
	return nil
}

func ParseCardsTOML(data []byte) ([]workout.Card, error) {
	var f CardsFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("parsing cards toml: %w", err)
	}
	return docsToCards(f.Cards)
}
