package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field int

const (
	fieldContainer field = iota
	fieldVideoCodec
	fieldAudioCodec
	fieldPreset
	fieldCRF
	fieldScale
	fieldFPS
	fieldCount
)

var fieldNames = [fieldCount]string{"Container", "Video codec", "Audio codec", "Preset", "Quality (CRF)", "Scale", "Frame rate"}

var fieldHelpKeys = [fieldCount]string{"container", "videoCodec", "audioCodec", "preset", "crf", "scale", "fps"}

var (
	scaleChoices = []string{Original, "3840:-1", "1920:-1", "1280:-1", "854:-1"}
	fpsChoices   = []string{Original, "24", "25", "30", "50", "60"}
)

// optionsForm edits an Options value field by field. Enumerated fields
// cycle with left/right; scale and fps also accept a typed value.
type optionsForm struct {
	opts    Options
	cursor  field
	editing bool
	input   textinput.Model
	err     error
}

func newOptionsForm(opts Options) optionsForm {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 20
	return optionsForm{opts: opts, input: ti}
}

func cycleIndex(i, n, delta int) int {
	return ((i+delta)%n + n) % n
}

func indexOf[T comparable](xs []T, x T) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

func (f *optionsForm) cycle(delta int) {
	o := &f.opts
	switch f.cursor {
	case fieldContainer:
		o.Container = Containers[cycleIndex(indexOf(Containers, o.Container), len(Containers), delta)]
	case fieldVideoCodec:
		o.VideoCodec = VideoCodec(cycleIndex(int(o.VideoCodec), len(videoCodecs), delta))
	case fieldAudioCodec:
		o.AudioCodec = AudioCodec(cycleIndex(int(o.AudioCodec), len(audioCodecs), delta))
	case fieldPreset:
		o.Preset = Presets[cycleIndex(indexOf(Presets, o.Preset), len(Presets), delta)]
	case fieldCRF:
		crf := o.CRF + delta
		if ValidCRF(crf) {
			o.CRF = crf
		}
	case fieldScale:
		o.Scale = scaleChoices[cycleIndex(indexOf(scaleChoices, o.Scale), len(scaleChoices), delta)]
	case fieldFPS:
		o.FPS = fpsChoices[cycleIndex(indexOf(fpsChoices, o.FPS), len(fpsChoices), delta)]
	}
}

func (f optionsForm) editable() bool {
	return f.cursor == fieldScale || f.cursor == fieldFPS || f.cursor == fieldCRF
}

func (f *optionsForm) startEdit() tea.Cmd {
	f.editing = true
	f.err = nil
	switch f.cursor {
	case fieldScale:
		f.input.Placeholder = "1920:-1"
		f.input.SetValue(f.opts.Scale)
	case fieldFPS:
		f.input.Placeholder = "30"
		f.input.SetValue(f.opts.FPS)
	case fieldCRF:
		f.input.Placeholder = "23"
		f.input.SetValue(strconv.Itoa(f.opts.CRF))
	}
	f.input.CursorEnd()
	return f.input.Focus()
}

func (f *optionsForm) commitEdit() {
	v := strings.TrimSpace(f.input.Value())
	if v == "" {
		v = Original
	}
	switch f.cursor {
	case fieldScale:
		if !ValidScale(v) {
			f.err = fmt.Errorf("scale must be %q or W:H, e.g. 1920:-1", Original)
			return
		}
		f.opts.Scale = v
	case fieldFPS:
		if !ValidFPS(v) {
			f.err = fmt.Errorf("frame rate must be %q or %d-%d", Original, MinFPS, MaxFPS)
			return
		}
		f.opts.FPS = v
	case fieldCRF:
		crf, err := strconv.Atoi(v)
		if err != nil || !ValidCRF(crf) {
			f.err = fmt.Errorf("crf must be a number in %d-%d", MinCRF, MaxCRF)
			return
		}
		f.opts.CRF = crf
	}
	f.editing = false
	f.err = nil
	f.input.Blur()
}

// Update handles a message for the form. done is true when the user
// confirmed the options with enter.
func (f optionsForm) Update(msg tea.Msg) (optionsForm, tea.Cmd, bool) {
	if f.editing {
		if km, ok := msg.(tea.KeyMsg); ok {
			switch km.Type {
			case tea.KeyEnter:
				f.commitEdit()
				return f, nil, false
			case tea.KeyEsc:
				f.editing = false
				f.err = nil
				f.input.Blur()
				return f, nil, false
			}
		}
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return f, cmd, false
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil, false
	}
	switch km.String() {
	case "up", "k":
		f.cursor = field(cycleIndex(int(f.cursor), int(fieldCount), -1))
	case "down", "j", "tab":
		f.cursor = field(cycleIndex(int(f.cursor), int(fieldCount), 1))
	case "left", "h":
		f.cycle(-1)
	case "right", "l":
		f.cycle(1)
	case "e":
		if f.editable() {
			return f, f.startEdit(), false
		}
	case "enter":
		return f, nil, true
	}
	return f, nil, false
}

func (f optionsForm) value(fl field) string {
	o := f.opts
	switch fl {
	case fieldContainer:
		return o.Container.Label()
	case fieldVideoCodec:
		v := o.VideoCodec.Label()
		if o.Container.AudioOnly() {
			v += " (dropped for audio-only output)"
		}
		return v
	case fieldAudioCodec:
		return o.AudioCodec.Label()
	case fieldPreset:
		return string(o.Preset)
	case fieldCRF:
		return strconv.Itoa(o.CRF)
	case fieldScale:
		return o.Scale
	case fieldFPS:
		return o.FPS
	}
	return ""
}

func (f optionsForm) View() string {
	var s strings.Builder
	for fl := field(0); fl < fieldCount; fl++ {
		cursor := "  "
		val := valueStyle.Render(f.value(fl))
		if fl == f.cursor {
			cursor = selectedStyle.Render("> ")
			val = selectedStyle.Render("‹ " + f.value(fl) + " ›")
			if f.editing {
				val = f.input.View()
			}
		}
		s.WriteString(cursor + labelStyle.Render(fieldNames[fl]) + val + "\n")
	}
	s.WriteString("\n" + helpStyle.Render(fieldHelp[fieldHelpKeys[f.cursor]]) + "\n")
	if f.err != nil {
		s.WriteString(errStyle.Render(f.err.Error()) + "\n")
	}
	return s.String()
}
