package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesatomc/token/internal/contract"
)

// TokenFetcher loads the rows a live list shows.
type TokenFetcher func() ([]*contract.Record, error)

// liveListModel is the Bubble Tea model for a self-refreshing token list.
type liveListModel struct {
	title      string
	records    []*contract.Record
	mine       func(*contract.Record) bool
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	fetcher    TokenFetcher
	err        string
}

type tickMsg time.Time
type tokensFetchedMsg []*contract.Record
type tokensErrorMsg string

// NewLiveList creates a Bubble Tea program that reloads the token list
// every interval until the user quits.
func NewLiveList(title string, interval time.Duration, fetcher TokenFetcher, mine func(*contract.Record) bool) *tea.Program {
	return tea.NewProgram(newLiveListModel(title, interval, fetcher, mine))
}

func newLiveListModel(title string, interval time.Duration, fetcher TokenFetcher, mine func(*contract.Record) bool) liveListModel {
	return liveListModel{title: title, interval: interval, fetcher: fetcher, mine: mine}
}

func (m liveListModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m liveListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case tokensFetchedMsg:
		m.records = []*contract.Record(msg)
		m.lastUpdate = time.Now()
		m.err = ""

	case tokensErrorMsg:
		m.err = string(msg)
	}

	return m, nil
}

func (m liveListModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.title) + "\n")
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("Updated: %s · r to refresh · q to quit\n\n", updated)))

	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n")
	}

	switch {
	case m.lastUpdate.IsZero() && m.err == "":
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
	case len(m.records) == 0 && m.err == "":
		sb.WriteString(StyleMeta.Render("No tokens yet.") + "\n")
	case len(m.records) > 0:
		sb.WriteString(TokenTable(m.records, m.mine).Render())
	}

	return sb.String()
}

func (m liveListModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		recs, err := m.fetcher()
		if err != nil {
			return tokensErrorMsg(err.Error())
		}
		return tokensFetchedMsg(recs)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
