package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Container is the output file format. It doubles as the output extension.
type Container string

const (
	ContainerMP4  Container = "mp4"
	ContainerMOV  Container = "mov"
	ContainerMKV  Container = "mkv"
	ContainerWebM Container = "webm"
	ContainerMP3  Container = "mp3"
	// only reachable through the image smart default
	ContainerWebP Container = "webp"
)

// Containers lists the selectable containers in display order.
var Containers = []Container{ContainerMP4, ContainerMOV, ContainerMKV, ContainerWebM, ContainerMP3}

var containerLabels = map[Container]string{
	ContainerMP4:  "MP4 (universal)",
	ContainerMOV:  "MOV (macOS)",
	ContainerMKV:  "MKV (modern)",
	ContainerWebM: "WebM (web)",
	ContainerMP3:  "MP3 (audio only)",
	ContainerWebP: "WebP (image)",
}

func (c Container) Label() string {
	if l, ok := containerLabels[c]; ok {
		return l
	}
	return string(c)
}

// AudioOnly reports whether the container cannot carry a video stream.
func (c Container) AudioOnly() bool { return c == ContainerMP3 }

type VideoCodec int

const (
	VideoH264 VideoCodec = iota
	VideoH265
	VideoProRes
	VideoVP9
	VideoAV1
	VideoCopy
)

type AudioCodec int

const (
	AudioAAC AudioCodec = iota
	AudioMP3
	AudioOpus
	AudioCopy
	AudioNone
)

// codecEntry ties an enum value to its flag name, its display label and the
// identifier that both ffmpeg and the conversion API understand.
type codecEntry struct {
	name  string
	label string
	id    string
}

var videoCodecs = []codecEntry{
	VideoH264:   {name: "h264", label: "H.264 (AVC)", id: "libx264"},
	VideoH265:   {name: "h265", label: "H.265 (HEVC)", id: "libx265"},
	VideoProRes: {name: "prores", label: "ProRes", id: "prores_ks"},
	VideoVP9:    {name: "vp9", label: "VP9", id: "libvpx-vp9"},
	VideoAV1:    {name: "av1", label: "AV1", id: "libaom-av1"},
	VideoCopy:   {name: "copy", label: "Copy (no re-encode)", id: "copy"},
}

var audioCodecs = []codecEntry{
	AudioAAC:  {name: "aac", label: "AAC", id: "aac"},
	AudioMP3:  {name: "mp3", label: "MP3", id: "libmp3lame"},
	AudioOpus: {name: "opus", label: "Opus", id: "libopus"},
	AudioCopy: {name: "copy", label: "Copy original", id: "copy"},
	AudioNone: {name: "none", label: "Remove audio track", id: ""},
}

func (v VideoCodec) entry() codecEntry {
	if v < 0 || int(v) >= len(videoCodecs) {
		return codecEntry{name: fmt.Sprintf("video(%d)", int(v)), label: "unknown"}
	}
	return videoCodecs[v]
}

// ID returns the ffmpeg encoder identifier, e.g. "libx264".
func (v VideoCodec) ID() string     { return v.entry().id }
func (v VideoCodec) String() string { return v.entry().name }
func (v VideoCodec) Label() string  { return v.entry().label }

func (a AudioCodec) entry() codecEntry {
	if a < 0 || int(a) >= len(audioCodecs) {
		return codecEntry{name: fmt.Sprintf("audio(%d)", int(a)), label: "unknown"}
	}
	return audioCodecs[a]
}

// ID returns the ffmpeg encoder identifier. AudioNone has none.
func (a AudioCodec) ID() string     { return a.entry().id }
func (a AudioCodec) String() string { return a.entry().name }
func (a AudioCodec) Label() string  { return a.entry().label }

type Preset string

const (
	PresetUltrafast Preset = "ultrafast"
	PresetSuperfast Preset = "superfast"
	PresetVeryfast  Preset = "veryfast"
	PresetFaster    Preset = "faster"
	PresetFast      Preset = "fast"
	PresetMedium    Preset = "medium"
	PresetSlow      Preset = "slow"
	PresetSlower    Preset = "slower"
	PresetVeryslow  Preset = "veryslow"
)

// Presets is ordered from fastest to smallest output.
var Presets = []Preset{
	PresetUltrafast, PresetSuperfast, PresetVeryfast, PresetFaster, PresetFast,
	PresetMedium, PresetSlow, PresetSlower, PresetVeryslow,
}

const (
	Original = "original"

	MinCRF = 0
	MaxCRF = 51
	MinFPS = 1
	MaxFPS = 120
)

// Options is a complete set of conversion choices. Every field always holds
// a value; there is no partially filled state.
type Options struct {
	Container  Container
	VideoCodec VideoCodec
	AudioCodec AudioCodec
	Preset     Preset
	CRF        int
	Scale      string
	FPS        string
}

func DefaultOptions() Options {
	return Options{
		Container:  ContainerMP4,
		VideoCodec: VideoH264,
		AudioCodec: AudioAAC,
		Preset:     PresetMedium,
		CRF:        23,
		Scale:      Original,
		FPS:        Original,
	}
}

// ApplySmartDefaults adjusts opts for the kind of file that was just picked.
func ApplySmartDefaults(opts Options, fileName string) Options {
	switch extension(fileName) {
	case "mov":
		opts.Container = ContainerMP4
		opts.VideoCodec = VideoH264
	case "png", "jpg":
		opts.Container = ContainerWebP
		opts.VideoCodec = VideoCopy
	}
	return opts
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func ParseContainer(s string) (Container, error) {
	c := Container(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if c == ContainerWebP {
		return c, nil
	}
	for _, known := range Containers {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown container %q", s)
}

// ParseVideoCodec accepts either the short name ("h265") or the encoder id ("libx265").
func ParseVideoCodec(s string) (VideoCodec, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, e := range videoCodecs {
		if key == e.name || key == e.id {
			return VideoCodec(i), nil
		}
	}
	return 0, fmt.Errorf("unknown video codec %q", s)
}

func ParseAudioCodec(s string) (AudioCodec, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "an" {
		return AudioNone, nil
	}
	for i, e := range audioCodecs {
		if key == e.name || (e.id != "" && key == e.id) {
			return AudioCodec(i), nil
		}
	}
	return 0, fmt.Errorf("unknown audio codec %q", s)
}

func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Presets {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown preset %q", s)
}

var scaleExpr = regexp.MustCompile(`^-?\d+:-?\d+$`)

func ValidCRF(crf int) bool { return crf >= MinCRF && crf <= MaxCRF }

func ValidFPS(fps string) bool {
	if fps == Original {
		return true
	}
	n, err := strconv.Atoi(fps)
	return err == nil && n >= MinFPS && n <= MaxFPS
}

// ValidScale accepts "original" or integer W:H. Expressions such as
// iw/2:-1 are not accepted.
func ValidScale(scale string) bool {
	return scale == Original || scaleExpr.MatchString(scale)
}

// Validate is used by the option-setting layer; the translator itself
// accepts whatever it is given.
func (o Options) Validate() error {
	if !ValidCRF(o.CRF) {
		return fmt.Errorf("crf %d outside [%d, %d]", o.CRF, MinCRF, MaxCRF)
	}
	if !ValidScale(o.Scale) {
		return fmt.Errorf("scale %q is not %q or W:H", o.Scale, Original)
	}
	if !ValidFPS(o.FPS) {
		return fmt.Errorf("fps %q is not %q or a number in [%d, %d]", o.FPS, Original, MinFPS, MaxFPS)
	}
	return nil
}

var fieldHelp = map[string]string{
	"container":  "File extension / container format of the output (.mp4, .mkv, .mov).",
	"videoCodec": "Encoder used to compress the video stream. H.264 plays everywhere; H.265 compresses better but needs newer hardware.",
	"audioCodec": "Encoder for the audio stream. AAC is the MP4 standard. Copy keeps the original audio without re-encoding.",
	"preset":     "Encoding speed versus compression efficiency. Slow presets give smaller files but take longer.",
	"crf":        "Constant Rate Factor. Lower values mean better quality and bigger files. 18-28 is the usual range, 23 is the default.",
	"scale":      "Resize the video. Original keeps the dimensions; 1920:-1 scales the width to 1920 keeping the aspect ratio.",
	"fps":        "Frames per second. Dropping to 24 or 30 saves space; raising it does not add quality.",
}
