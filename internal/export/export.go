package export

import (
	"fmt"
	"io"
	"time"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Write exports d in format: json is the full backup, csv the history table,
// yaml and toml the card list.
func Write(w io.Writer, format string, d Data, now time.Time) error {
	switch format {
	case FormatJSON:
		return WriteBackupJSON(w, NewBackup(d, now))
	case FormatCSV:
		return WriteHistoryCSV(w, d.History, d.Profiles)
	case FormatYAML:
		return WriteCardsYAML(w, d.Cards)
	case FormatTOML:
		return WriteCardsTOML(w, d.Cards)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
