package tui

// Page is the screen shown on the left of the log pane.
type Page int

const (
	PageCards   Page = iota // Card list and plan preview
	PageRunner              // Active run
	PageHistory             // Profile history and rankings
)

// PageInfo contains display information for a page
type PageInfo struct {
	Page        Page
	DisplayName string
	KeyBinding  rune
}

var AllPages = []PageInfo{
	{Page: PageCards, DisplayName: "Cards", KeyBinding: '1'},
	{Page: PageRunner, DisplayName: "Runner", KeyBinding: '2'},
	{Page: PageHistory, DisplayName: "History", KeyBinding: '3'},
}

func PageByKey(key rune) (Page, bool) {
	for _, info := range AllPages {
		if info.KeyBinding == key {
			return info.Page, true
		}
	}
	return 0, false
}

func PageInfoFor(page Page) (PageInfo, bool) {
	for _, info := range AllPages {
		if info.Page == page {
			return info, true
		}
	}
	return PageInfo{}, false
}
