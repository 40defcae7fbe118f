package logging

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ChannelHook forwards log lines to a channel, for the log pane of the
// terminal UI. Lines are dropped while the channel is full.
type ChannelHook struct {
	lines  chan<- string
	levels []logrus.Level
}

func NewChannelHook(lines chan<- string, minLevel logrus.Level) *ChannelHook {
	if lines == nil {
		panic("logging: nil channel")
	}
	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= minLevel {
			levels = append(levels, l)
		}
	}
	return &ChannelHook{lines: lines, levels: levels}
}

func (h *ChannelHook) Levels() []logrus.Level {
	return h.levels
}

func (h *ChannelHook) Fire(entry *logrus.Entry) error {
	line := fmt.Sprintf("%s %-5s %s",
		entry.Time.Format("15:04:05"),
		strings.ToUpper(entry.Level.String()),
		entry.Message)
	select {
	case h.lines <- line:
	default:
	}
	return nil
}
