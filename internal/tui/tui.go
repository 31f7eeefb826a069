// Package tui is the interactive scan-then-replace surface. It drives the
// same core scan/replace functions as the CLI, with a live progress bar and
// a per-archive results table.
package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deckpatch/deckpatch/internal/pptx"
)

// Options configures one interactive session. All paths are validated by the
// caller before Run.
type Options struct {
	Dir         string // folder of PPTX files
	Source      string // image to find (hashed for matching)
	Replacement string // image to substitute
	OutputDir   string // empty = in place
	Recursive   bool
	Backup      bool
	Workers     int
}

type phase int

const (
	phaseIdle phase = iota
	phaseScanning
	phaseScanned
	phaseReplacing
	phaseDone
	phaseFailed
)

// Messages flowing from the worker goroutine into the Update loop.
type (
	progressMsg struct {
		current, total int
		path           string
	}
	scanDoneMsg struct {
		matches []pptx.ArchiveMatches
		err     error
	}
	replaceDoneMsg struct {
		results []pptx.ReplaceResult
		err     error
	}
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

type model struct {
	opts    Options
	matcher pptx.Matcher

	phase   phase
	status  string
	current string
	done    int
	total   int

	prog    progress.Model
	results table.Model

	events chan tea.Msg
	cancel context.CancelFunc
	ctx    context.Context

	scans   []pptx.ArchiveMatches
	matched int
	err     error
}

// Run launches the interactive session and blocks until it exits.
func Run(opts Options) error {
	sourceHash, err := pptx.FileMD5(opts.Source)
	if err != nil {
		return fmt.Errorf("cannot hash source image: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := model{
		opts:    opts,
		matcher: pptx.MatchHash(sourceHash),
		phase:   phaseIdle,
		status:  "press s to scan",
		prog:    progress.New(progress.WithDefaultGradient()),
		results: newResultsTable(),
		events:  make(chan tea.Msg, 16),
		cancel:  cancel,
		ctx:     ctx,
	}
	defer cancel()

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newResultsTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Status", Width: 8},
			{Title: "File", Width: 36},
			{Title: "Matches", Width: 8},
			{Title: "Message", Width: 30},
		}),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true)
	t.SetStyles(s)
	return t
}

func (m model) Init() tea.Cmd {
	return m.listen()
}

// listen re-arms the channel pump: each delivered message is followed by
// another listen command, so worker progress streams into Update.
func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			// Cancellation lands between archives; an in-flight rewrite
			// finishes or fails first.
			m.cancel()
			return m, tea.Quit
		case "s":
			if m.phase == phaseIdle || m.phase == phaseScanned || m.phase == phaseDone {
				return m.startScan()
			}
		case "r":
			if m.phase == phaseScanned && m.matched > 0 {
				return m.startReplace()
			}
		}

	case tea.WindowSizeMsg:
		m.prog.Width = msg.Width - 8
		if m.prog.Width > 60 {
			m.prog.Width = 60
		}

	case progressMsg:
		m.done = msg.current
		m.total = msg.total
		m.current = msg.path
		return m, m.listen()

	case scanDoneMsg:
		return m.finishScan(msg)

	case replaceDoneMsg:
		return m.finishReplace(msg)
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m model) startScan() (tea.Model, tea.Cmd) {
	m.phase = phaseScanning
	m.status = "scanning..."
	m.done, m.total = 0, 0
	m.results.SetRows(nil)

	go func() {
		matches, err := pptx.BatchScan(m.ctx, m.opts.Dir, m.matcher, pptx.BatchOptions{
			Recursive: m.opts.Recursive,
			Workers:   m.opts.Workers,
		})
		m.events <- scanDoneMsg{matches: matches, err: err}
	}()
	return m, m.listen()
}

func (m model) finishScan(msg scanDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.phase = phaseFailed
		m.err = msg.err
		m.status = "scan failed"
		return m, m.listen()
	}

	m.scans = msg.matches
	m.matched = 0
	rows := make([]table.Row, 0, len(msg.matches))
	for _, s := range msg.matches {
		status := "○"
		detail := "no match"
		switch {
		case s.Err != nil:
			status = "✗"
			detail = s.Err.Error()
		case s.Matches > 0:
			status = "✓"
			detail = fmt.Sprintf("%d match(es)", s.Matches)
			m.matched++
		}
		rows = append(rows, table.Row{
			status,
			filepath.Base(s.ArchivePath),
			fmt.Sprintf("%d", s.Matches),
			detail,
		})
	}
	m.results.SetRows(rows)

	m.phase = phaseScanned
	if m.matched == 0 {
		m.status = fmt.Sprintf("scanned %d archive(s) — nothing to replace", len(m.scans))
	} else {
		m.status = fmt.Sprintf("scanned %d archive(s), %d with matches — press r to replace", len(m.scans), m.matched)
	}
	return m, m.listen()
}

func (m model) startReplace() (tea.Model, tea.Cmd) {
	m.phase = phaseReplacing
	m.status = "replacing..."
	m.done, m.total = 0, m.matched

	go func() {
		results, err := pptx.BatchReplace(m.ctx, m.opts.Dir, m.matcher, m.opts.Replacement,
			pptx.BatchOptions{
				Recursive:  m.opts.Recursive,
				OutputRoot: m.opts.OutputDir,
				Backup:     m.opts.Backup,
				Workers:    m.opts.Workers,
			},
			func(current, total int, path string) {
				m.events <- progressMsg{current: current, total: total, path: path}
			})
		m.events <- replaceDoneMsg{results: results, err: err}
	}()
	return m, m.listen()
}

func (m model) finishReplace(msg replaceDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && len(msg.results) == 0 {
		m.phase = phaseFailed
		m.err = msg.err
		m.status = "replace failed"
		return m, m.listen()
	}

	var replaced, failed, images int
	rows := make([]table.Row, 0, len(msg.results))
	for _, r := range msg.results {
		status := "✓"
		if !r.Success {
			status = "✗"
			failed++
		} else if r.ReplacedCount > 0 {
			replaced++
			images += r.ReplacedCount
		}
		rows = append(rows, table.Row{
			status,
			filepath.Base(r.ArchivePath),
			fmt.Sprintf("%d", r.ReplacedCount),
			r.Message,
		})
	}
	m.results.SetRows(rows)

	m.phase = phaseDone
	m.status = fmt.Sprintf("done: %d archive(s) rewritten (%d image(s)), %d failed", replaced, images, failed)
	return m, m.listen()
}

func (m model) View() string {
	var b []string

	b = append(b, titleStyle.Render("deckpatch — scan & replace"), "")
	b = append(b,
		labelStyle.Render("folder:      ")+m.opts.Dir,
		labelStyle.Render("source:      ")+m.opts.Source,
		labelStyle.Render("replacement: ")+m.opts.Replacement,
	)
	if m.opts.OutputDir != "" {
		b = append(b, labelStyle.Render("output:      ")+m.opts.OutputDir)
	}
	b = append(b, "")

	switch m.phase {
	case phaseScanning, phaseReplacing:
		frac := 0.0
		if m.total > 0 {
			frac = float64(m.done) / float64(m.total)
		}
		b = append(b, m.prog.ViewAs(frac))
		if m.current != "" {
			b = append(b, labelStyle.Render(fmt.Sprintf("[%d/%d] %s", m.done, m.total, filepath.Base(m.current))))
		}
	case phaseFailed:
		b = append(b, errStyle.Render(fmt.Sprintf("error: %v", m.err)))
	default:
		b = append(b, okStyle.Render(m.status))
	}
	b = append(b, "")

	if len(m.results.Rows()) > 0 {
		b = append(b, borderStyle.Render(m.results.View()), "")
	}

	b = append(b, helpStyle.Render("s: scan   r: replace   q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, b...)
}
