package main

import (
	"strconv"
	"strings"
	"unicode"
)

const outputSuffix = "_converted"

// SanitizeBaseName drops the extension of fileName and makes the rest safe
// to use as an output name: whitespace runs become one underscore and every
// character outside printable ASCII becomes an underscore.
func SanitizeBaseName(fileName string) string {
	base := fileName
	// a name without a dot, or with only a leading one, has no extension
	if i := strings.LastIndex(fileName, "."); i > 0 {
		base = fileName[:i]
	}

	var b strings.Builder
	inSpace := false
	for _, r := range base {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if r < 0x20 || r > 0x7e {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OutputName is the file name the generated command writes to.
func OutputName(opts Options, sourceFileName string) string {
	return SanitizeBaseName(sourceFileName) + outputSuffix + "." + string(opts.Container)
}

// buildFFmpegArgs returns everything between the input and output paths.
func buildFFmpegArgs(opts Options) []string {
	audioOnly := opts.Container.AudioOnly()
	var args []string

	switch {
	case audioOnly:
		args = append(args, "-vn")
	case opts.VideoCodec == VideoCopy:
		args = append(args, "-c:v", "copy")
	default:
		args = append(args,
			"-c:v", opts.VideoCodec.ID(),
			"-preset", string(opts.Preset),
			"-crf", strconv.Itoa(opts.CRF),
		)
	}

	if !audioOnly {
		if opts.Scale != Original {
			args = append(args, "-vf", "scale="+opts.Scale)
		}
		if opts.FPS != Original {
			args = append(args, "-r", opts.FPS)
		}
	}

	switch {
	case opts.AudioCodec == AudioNone && audioOnly:
		// an mp3 with no audio stream is not a file
		args = append(args, "-c:a", AudioMP3.ID())
	case opts.AudioCodec == AudioNone:
		args = append(args, "-an")
	default:
		args = append(args, "-c:a", opts.AudioCodec.ID())
	}

	if opts.AudioCodec == AudioAAC && !audioOnly {
		args = append(args, "-movflags", "+faststart")
	}
	return args
}

// BuildCommand renders the ffmpeg invocation for converting sourceFileName
// with opts. The input name is quoted but otherwise passed through as is.
func BuildCommand(opts Options, sourceFileName string) string {
	parts := []string{"ffmpeg", "-i", quote(sourceFileName)}
	parts = append(parts, buildFFmpegArgs(opts)...)
	parts = append(parts, quote(OutputName(opts, sourceFileName)))
	return strings.Join(parts, " ")
}

func quote(s string) string { return `"` + s + `"` }

// ConvertRequest is the JSON body of POST /convert/{session_id}.
type ConvertRequest struct {
	SessionID string `json:"-"`

	Filename    string  `json:"filename"`
	Container   string  `json:"container"`
	VideoCodec  string  `json:"video_codec"`
	AudioCodec  string  `json:"audio_codec"`
	Preset      string  `json:"preset"`
	CRF         int     `json:"crf"`
	RemoveAudio bool    `json:"remove_audio"`
	Scale       *string `json:"scale"`
	FPS         *string `json:"fps"`
}

// BuildConvertRequest maps opts onto the conversion API payload.
//
// With AudioNone the payload still names "aac": the service requires a
// codec, and remove_audio is what actually strips the track.
func BuildConvertRequest(opts Options, sourceFileName, sessionID string) ConvertRequest {
	req := ConvertRequest{
		SessionID:   sessionID,
		Filename:    sourceFileName,
		Container:   string(opts.Container),
		VideoCodec:  opts.VideoCodec.ID(),
		AudioCodec:  opts.AudioCodec.ID(),
		Preset:      string(opts.Preset),
		CRF:         opts.CRF,
		RemoveAudio: opts.AudioCodec == AudioNone,
	}
	if opts.Container.AudioOnly() {
		req.VideoCodec = "none"
	}
	if req.RemoveAudio {
		req.AudioCodec = AudioAAC.ID()
	}
	if opts.Scale != Original {
		scale := opts.Scale
		req.Scale = &scale
	}
	if opts.FPS != Original {
		fps := opts.FPS
		req.FPS = &fps
	}
	return req
}
