package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
)

type screen int

const (
	screenPicker screen = iota
	screenOptions
	screenAction
	screenCommand
	screenConfirm
	screenRunning
	screenDone
	screenError
)

const (
	padding  = 2
	maxWidth = 80
)

const (
	actionCommand = "command"
	actionRemote  = "remote"
)

type actionItem struct {
	title string
	desc  string
	id    string
}

func (a actionItem) Title() string       { return a.title }
func (a actionItem) Description() string { return a.desc }
func (a actionItem) FilterValue() string { return a.title }

type model struct {
	screen screen
	logger hclog.Logger

	filepicker filepicker.Model
	actionList list.Model
	form       optionsForm

	source   SourceFile
	command  string
	copied   bool
	workflow *Workflow

	// run identifies the current remote attempt; results of abandoned
	// attempts carry an older value and are dropped.
	run          int
	progress     progress.Model
	spinner      spinner.Model
	percent      float64
	progressChan chan tea.Msg
	uploadDone   chan struct{}

	clipboard func(string) error

	err      error
	canceled bool
}

type (
	uploadProgressMsg struct {
		run     int
		percent float64
	}
	uploadedMsg struct {
		run  int
		resp *UploadResponse
	}
	convertedMsg struct {
		run  int
		resp *ConvertResponse
	}
	workflowErrMsg struct {
		run int
		err error
	}
)

type clearErrorMsg struct{}

type clearCopiedMsg struct{}

func clearErrorAfter(t time.Duration) tea.Cmd {
	return tea.Tick(t, func(_ time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

func clearCopiedAfter(t time.Duration) tea.Cmd {
	return tea.Tick(t, func(_ time.Time) tea.Msg {
		return clearCopiedMsg{}
	})
}

func initialModel(cfg Config, wf *Workflow, logger hclog.Logger) model {
	fp := filepicker.New()
	fp.AllowedTypes = AllowedExtensions()
	fp.CurrentDirectory = cfg.StartDir
	fp.ShowHidden = false
	fp.AutoHeight = true

	items := []list.Item{
		actionItem{title: "Generate ffmpeg command", desc: "Show the command to run in your own terminal", id: actionCommand},
		actionItem{title: "Convert on server", desc: "Upload to " + wf.API().BaseURL() + " and convert there", id: actionRemote},
	}
	delegate := list.NewDefaultDelegate()
	ls := list.New(items, delegate, 60, 12)
	ls.Title = "What next? (↑/↓ then Enter)"
	ls.SetShowStatusBar(false)
	ls.SetFilteringEnabled(false)
	ls.Select(0)

	pb := progress.New(progress.WithDefaultGradient())
	pb.SetPercent(0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return model{
		screen:     screenPicker,
		logger:     logger.Named("tui"),
		filepicker: fp,
		actionList: ls,
		form:       newOptionsForm(DefaultOptions()),
		workflow:   wf,
		progress:   pb,
		spinner:    sp,
		clipboard:  clipboard.WriteAll,
	}
}

func (m model) Init() tea.Cmd {
	return m.filepicker.Init()
}

// acceptSource starts over with fresh options for a newly picked file.
func (m model) acceptSource(path string) (model, error) {
	src, err := StatSource(path)
	if err != nil {
		return m, err
	}
	if !IsSupported(src.Name) {
		return m, ErrUnsupportedType(src.Name)
	}
	m.source = src
	m.form = newOptionsForm(ApplySmartDefaults(DefaultOptions(), src.Name))
	m.command = ""
	m.screen = screenOptions
	m.logger.Debug("source accepted", "path", src.Path, "size", src.Size, "mime", src.MimeType)
	return m, nil
}

func (m model) resetToPicker() model {
	m.workflow.Abandon()
	m.source = SourceFile{}
	m.form = newOptionsForm(DefaultOptions())
	m.command = ""
	m.err = nil
	m.screen = screenPicker
	return m
}

func (m model) copy(text string) (model, tea.Cmd) {
	if err := m.clipboard(text); err != nil {
		m.err = fmt.Errorf("copy failed: %w", err)
		return m, clearErrorAfter(2 * time.Second)
	}
	m.copied = true
	return m, clearCopiedAfter(2 * time.Second)
}

// startUpload hands the file to the client in a command; progress arrives
// on progressChan until uploadDone is closed.
func (m model) startUpload() (model, tea.Cmd) {
	m.run++
	m.percent = 0
	m.progress.SetPercent(0)
	m.progressChan = make(chan tea.Msg, 1)
	m.uploadDone = make(chan struct{})
	m.screen = screenRunning

	run, api, src := m.run, m.workflow.API(), m.workflow.Source()
	ch, done := m.progressChan, m.uploadDone

	upload := func() tea.Msg {
		defer close(done)
		resp, err := api.Upload(context.Background(), src, func(sent, total int64) {
			if total <= 0 {
				return
			}
			select {
			case ch <- uploadProgressMsg{run: run, percent: float64(sent) / float64(total)}:
			default:
			}
		})
		if err != nil {
			return workflowErrMsg{run: run, err: err}
		}
		return uploadedMsg{run: run, resp: resp}
	}
	return m, tea.Batch(upload, listen(ch, done), m.spinner.Tick)
}

func listen(ch <-chan tea.Msg, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

func convertCmd(api ConversionAPI, req ConvertRequest, run int) tea.Cmd {
	return func() tea.Msg {
		resp, err := api.Convert(context.Background(), req)
		if err != nil {
			return workflowErrMsg{run: run, err: err}
		}
		return convertedMsg{run: run, resp: resp}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		m.actionList.SetSize(min(msg.Width, maxWidth), 12)
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// in-flight requests are left to finish on their own
			m.canceled = true
			return m, tea.Quit
		}
	case clearErrorMsg:
		m.err = nil
		return m, nil
	case clearCopiedMsg:
		m.copied = false
		return m, nil
	}

	switch m.screen {
	case screenPicker:
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "q" {
			m.canceled = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			next, err := m.acceptSource(path)
			if err != nil {
				m.err = err
				return m, tea.Batch(cmd, clearErrorAfter(2*time.Second))
			}
			return next, cmd
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.err = ErrUnsupportedType(filepath.Base(path))
			return m, tea.Batch(cmd, clearErrorAfter(2*time.Second))
		}
		return m, cmd

	case screenOptions:
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc && !m.form.editing {
			return m.resetToPicker(), nil
		}
		var cmd tea.Cmd
		var done bool
		m.form, cmd, done = m.form.Update(msg)
		if done {
			m.screen = screenAction
		}
		return m, cmd

	case screenAction:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.Type {
			case tea.KeyEnter:
				id := actionCommand
				if it, ok := m.actionList.SelectedItem().(actionItem); ok {
					id = it.id
				}
				if id == actionRemote {
					m.err = nil
					m.screen = screenConfirm
					return m, nil
				}
				m.command = BuildCommand(m.form.opts, m.source.Name)
				m.copied = false
				m.screen = screenCommand
				m.logger.Debug("command generated", "command", m.command)
				return m, nil
			case tea.KeyEsc:
				m.screen = screenOptions
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.actionList, cmd = m.actionList.Update(msg)
		return m, cmd

	case screenCommand:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "c", "y":
				return m.copy(m.command)
			case "esc", "enter", "backspace":
				m.screen = screenOptions
				return m, nil
			case "q":
				return m, tea.Quit
			}
		}
		return m, nil

	case screenConfirm:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.Type {
			case tea.KeyEnter:
				if err := m.workflow.Begin(m.source); err != nil {
					// rejected before any state change
					m.err = err
					return m, nil
				}
				return m.startUpload()
			case tea.KeyEsc:
				m.err = nil
				m.screen = screenAction
				return m, nil
			}
		}
		return m, nil

	case screenRunning:
		switch msg := msg.(type) {
		case progress.FrameMsg:
			pm, cmd := m.progress.Update(msg)
			if p, ok := pm.(progress.Model); ok {
				m.progress = p
			}
			return m, cmd

		case spinner.TickMsg:
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd

		case uploadProgressMsg:
			if msg.run != m.run {
				return m, nil
			}
			m.percent = msg.percent
			cmd := m.progress.SetPercent(m.percent)
			return m, tea.Batch(cmd, listen(m.progressChan, m.uploadDone))

		case uploadedMsg:
			if msg.run != m.run {
				return m, nil
			}
			if err := m.workflow.Uploaded(msg.resp); err != nil {
				m.logger.Warn("ignoring upload result", "error", err)
				return m, nil
			}
			m.logger.Debug("uploaded", "session", m.workflow.SessionID(), "name", m.workflow.UploadedName())
			m.percent = 1
			cmd := m.progress.SetPercent(1)
			req := m.workflow.ConvertRequest(m.form.opts)
			return m, tea.Batch(cmd, convertCmd(m.workflow.API(), req, m.run))

		case convertedMsg:
			if msg.run != m.run {
				return m, nil
			}
			if err := m.workflow.Converted(msg.resp); err != nil {
				m.logger.Warn("ignoring convert result", "error", err)
				return m, nil
			}
			m.copied = false
			m.screen = screenDone
			return m, nil

		case workflowErrMsg:
			if msg.run != m.run {
				return m, nil
			}
			if err := m.workflow.Fail(msg.err); err != nil {
				m.logger.Warn("ignoring failure", "error", err)
				return m, nil
			}
			m.screen = screenError
			return m, nil

		case tea.KeyMsg:
			if msg.String() == "esc" {
				// leave the request running; its result will be stale
				m.run++
				m.workflow.Abandon()
				m.screen = screenOptions
				return m, nil
			}
		}
		return m, nil

	case screenError:
		// these messages can still arrive from the attempt that failed
		switch msg.(type) {
		case spinner.TickMsg, progress.FrameMsg, uploadProgressMsg:
			return m, nil
		}
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "r", "enter":
				if err := m.workflow.Retry(); err != nil {
					m.logger.Warn("retry", "error", err)
					return m, nil
				}
				m.screen = screenConfirm
			default:
				_ = m.workflow.Reset()
				m.screen = screenOptions
			}
		}
		return m, nil

	case screenDone:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "c", "y":
				return m.copy(m.workflow.DownloadURL())
			case "q":
				return m, tea.Quit
			case "enter", "esc", "r":
				_ = m.workflow.Reset()
				return m.resetToPicker(), m.filepicker.Init()
			}
		}
		return m, nil
	}

	return m, nil
}

func (m model) analysis() string {
	s := m.source
	rows := [][2]string{
		{"File name", s.Name},
		{"Size", s.HumanSize()},
		{"Type", s.MimeType},
		{"Extension", "." + strings.ToUpper(s.Extension)},
	}
	var b strings.Builder
	for i, r := range rows {
		b.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return panelStyle.Render(b.String())
}

func (m model) View() string {
	switch m.screen {
	case screenPicker:
		if m.canceled {
			return ""
		}
		var s strings.Builder
		s.WriteString("\n  ")
		if m.err != nil {
			s.WriteString(errStyle.Render(DisplayMessage(m.err)))
		} else {
			s.WriteString(titleStyle.Render("Quantizer") + "  Pick a video or image file:")
		}
		s.WriteString("\n\n" + m.filepicker.View() + "\n")
		return s.String()

	case screenOptions:
		return fmt.Sprintf(
			"%s\n\n%s\n\n%s\n%s\n",
			titleStyle.Render("Conversion options"),
			m.analysis(),
			m.form.View(),
			helpStyle.Render("↑/↓ field · ←/→ change · e type a value · Enter continue · Esc pick another file"),
		)

	case screenAction:
		return fmt.Sprintf(
			"Selected input: %s\n\n%s\n\n%s\n",
			m.source.Name,
			m.actionList.View(),
			"(Esc to go back, Enter to confirm selection)",
		)

	case screenCommand:
		status := "c to copy · Esc to go back · q to quit"
		if m.copied {
			status = doneStyle.Render("Copied to clipboard")
		} else if m.err != nil {
			status = errStyle.Render(m.err.Error())
		}
		return fmt.Sprintf(
			"%s\n\nRun this in the folder that holds %s:\n\n%s\n\n%s\n",
			titleStyle.Render("Terminal command"),
			m.source.Name,
			cmdBoxStyle.Render(m.command),
			status,
		)

	case screenConfirm:
		var s strings.Builder
		fmt.Fprintf(&s, "Ready to convert on %s:\n\n  input:  %s (%s)\n  output: %s\n\n",
			m.workflow.API().BaseURL(), m.source.Name, m.source.HumanSize(), OutputName(m.form.opts, m.source.Name))
		if m.err != nil {
			s.WriteString(errStyle.Render(DisplayMessage(m.err)) + "\n\n")
		}
		s.WriteString("Press Enter to upload, Esc to go back, Ctrl+C to quit.\n")
		return s.String()

	case screenRunning:
		pad := strings.Repeat(" ", padding)
		status := "Uploading " + m.source.Name
		if m.workflow.State() == StateConverting {
			status = m.spinner.View() + " Converting on server..."
		}
		return "\n" +
			pad + status + "\n\n" +
			pad + m.progress.View() + "\n\n" +
			pad + helpStyle.Render("Esc to leave (the server keeps working)") + "\n"

	case screenError:
		return fmt.Sprintf("%s %s\n\n(r to retry, any other key to go back)\n",
			errStyle.Render("Error:"), m.workflow.Message())

	case screenDone:
		status := "c to copy the link · Enter to convert another file · q to quit"
		if m.copied {
			status = doneStyle.Render("Copied to clipboard")
		} else if m.err != nil {
			status = errStyle.Render(m.err.Error())
		}
		return fmt.Sprintf("%s\n\nDownload: %s\n\n%s\n",
			doneStyle.Render("Conversion finished!"), m.workflow.DownloadURL(), status)

	default:
		return "unknown state"
	}
}

func RunTUI(cfg Config, wf *Workflow, logger hclog.Logger) (model, error) {
	p := tea.NewProgram(initialModel(cfg, wf, logger), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return model{}, err
	}
	if fm, ok := final.(model); ok {
		return fm, nil
	}
	return model{}, errors.New("unexpected final model type")
}
