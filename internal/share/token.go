package share

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

const (
	Prefix  = "it1."
	Version = 1

	maxInflated = 1 << 20
)

// ErrUnrecognized is the only error Decode returns: the input is not a
// payload this program produced.
var ErrUnrecognized = errors.New("format not recognized")

type Type string

const (
	TypeCard Type = "card"
	TypeLog  Type = "log"
)

// Payload is a decoded token. Exactly one of Card and Log is set, matching Type.
type Payload struct {
	Type Type
	Name string
	Card *workout.Card
	Log  *workout.LogEntry
}

type wire struct {
	V    int               `json:"v"`
	Type Type              `json:"type"`
	Name string            `json:"name,omitempty"`
	Card *store.CardRecord `json:"card,omitempty"`
	Log  *store.LogRecord  `json:"log,omitempty"`
}

// EncodeCard produces a token for card. name is the sender's display name.
func EncodeCard(card workout.Card, name string) (string, error) {
	rec := store.CardToRecord(card)
	return encode(wire{V: Version, Type: TypeCard, Name: name, Card: &rec})
}

// EncodeLog produces a token for a history entry.
func EncodeLog(entry workout.LogEntry, name string) (string, error) {
	rec := store.LogToRecord(entry)
	return encode(wire{V: Version, Type: TypeLog, Name: name, Log: &rec})
}

func encode(w wire) (string, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encoding share payload: %w", err)
	}
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(data); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode validates the version and type tags before trusting the payload.
// Tokens may be pasted with surrounding text such as a URL; everything up to
// the prefix is ignored.
func Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	i := strings.Index(token, Prefix)
	if i < 0 {
		return Payload{}, fmt.Errorf("%w: missing %q prefix", ErrUnrecognized, Prefix)
	}
	body := strings.TrimRight(token[i+len(Prefix):], "=")

	compressed, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrUnrecognized, err)
	}
	zr := flate.NewReader(bytes.NewReader(compressed))
	defer zr.Close()
	data, err := io.ReadAll(io.LimitReader(zr, maxInflated+1))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrUnrecognized, err)
	}
	if len(data) > maxInflated {
		return Payload{}, fmt.Errorf("%w: payload too large", ErrUnrecognized)
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrUnrecognized, err)
	}
	if w.V != Version {
		return Payload{}, fmt.Errorf("%w: version %d", ErrUnrecognized, w.V)
	}

	p := Payload{Type: w.Type, Name: strings.TrimSpace(w.Name)}
	switch w.Type {
	case TypeCard:
		if w.Card == nil {
			return Payload{}, fmt.Errorf("%w: card missing", ErrUnrecognized)
		}
		card, err := store.CardFromRecord(*w.Card)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		p.Card = &card
	case TypeLog:
		if w.Log == nil {
			return Payload{}, fmt.Errorf("%w: log missing", ErrUnrecognized)
		}
		entry, err := store.LogFromRecord(*w.Log, "")
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		p.Log = &entry
	default:
		return Payload{}, fmt.Errorf("%w: type %q", ErrUnrecognized, w.Type)
	}
	return p, nil
}
