package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

type loadStartedMsg struct {
	index, total int
	load         pgbulk.TableLoad
}

type loadFinishedMsg struct {
	index, total int
	result       pgbulk.LoadResult
}

type batchDoneMsg struct{}

// progressModel renders completed loads, the load in flight and an overall bar.
type progressModel struct {
	title    string
	spinner  spinner.Model
	bar      progress.Model
	keys     KeyMap
	stop     func()
	abort    func()
	total    int
	current  *pgbulk.TableLoad
	done     []pgbulk.LoadResult
	stopping bool
	aborting bool
	finished bool
}

// newProgressModel calls stop on the first quit key and abort on the second.
func newProgressModel(title string, stop, abort func()) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return progressModel{
		title:   title,
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		keys:    DefaultKeyMap(),
		stop:    stop,
		abort:   abort,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !key.Matches(msg, m.keys.Quit) {
			return m, nil
		}
		switch {
		case !m.stopping:
			m.stopping = true
			if m.stop != nil {
				m.stop()
			}
		case !m.aborting:
			m.aborting = true
			if m.abort != nil {
				m.abort()
			}
		}
		return m, nil
	case loadStartedMsg:
		m.total = msg.total
		load := msg.load
		m.current = &load
		return m, nil
	case loadFinishedMsg:
		m.total = msg.total
		m.current = nil
		m.done = append(m.done, msg.result)
		return m, nil
	case batchDoneMsg:
		m.finished = true
		m.current = nil
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n\n")

	for _, r := range m.done {
		b.WriteString(resultLine(r))
		b.WriteString("\n")
	}

	if m.current != nil {
		fmt.Fprintf(&b, "%s Loading %s %s\n", m.spinner.View(), m.current.Table,
			MutedStyle.Render("("+filepath.Base(m.current.File)+")"))
	}

	if m.total > 0 {
		fmt.Fprintf(&b, "\n%s %d/%d\n", m.bar.ViewAs(float64(len(m.done))/float64(m.total)), len(m.done), m.total)
	}

	switch {
	case m.finished:
	case m.aborting:
		b.WriteString(WarningStyle.Render("Aborting the current table..."))
		b.WriteString("\n")
	case m.stopping:
		b.WriteString(WarningStyle.Render("Stopping after the current table... " +
			m.keys.Quit.Help().Key + " again to abort it"))
		b.WriteString("\n")
	default:
		b.WriteString(HelpStyle.Render(m.keys.Quit.Help().Key + ": " + m.keys.Quit.Help().Desc))
		b.WriteString("\n")
	}
	return b.String()
}

func resultLine(r pgbulk.LoadResult) string {
	if r.Failed() {
		return ErrorStyle.Render(SymbolCross+" "+r.Table) + " " + r.Diagnostic.Error()
	}
	return SuccessStyle.Render(SymbolCheck+" "+r.Table) +
		fmt.Sprintf(" %d rows ", r.RowsCopied) +
		MutedStyle.Render("("+r.Duration.Round(time.Millisecond).String()+")")
}

// programObserver forwards batch callbacks into the running program.
type programObserver struct {
	program *tea.Program
}

func (o programObserver) LoadStarted(index, total int, load pgbulk.TableLoad) {
	o.program.Send(loadStartedMsg{index: index, total: total, load: load})
}

func (o programObserver) LoadFinished(index, total int, result pgbulk.LoadResult) {
	o.program.Send(loadFinishedMsg{index: index, total: total, result: result})
}

var _ pgbulk.LoadObserver = programObserver{}

// BatchFunc runs a batch, reporting progress to observer. It should stop
// between tables once stop is closed.
type BatchFunc func(ctx context.Context, stop <-chan struct{}, observer pgbulk.LoadObserver) (*pgbulk.BatchReport, error)

// RunWithProgress runs fn while showing the live progress view on stderr.
// The first Ctrl+C closes stop so the table in flight finishes; the second
// cancels the context passed to fn, rolling that table back.
func RunWithProgress(ctx context.Context, title string, fn BatchFunc) (*pgbulk.BatchReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan struct{})
	var once sync.Once
	closeStop := func() { once.Do(func() { close(stop) }) }

	p := tea.NewProgram(newProgressModel(title, closeStop, cancel), tea.WithOutput(os.Stderr))

	type outcome struct {
		report *pgbulk.BatchReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := fn(ctx, stop, programObserver{program: p})
		done <- outcome{report, err}
		p.Send(batchDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		// The view failed; let the batch finish without it.
		fmt.Fprintf(os.Stderr, "progress display failed: %v\n", err)
	}
	res := <-done
	return res.report, res.err
}
