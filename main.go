package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
)

type cliFlags struct {
	in        string
	container string
	vcodec    string
	acodec    string
	preset    string
	crf       int
	scale     string
	fps       string
	submit    bool
	api       string
	logFile   string
}

func parseFlags(args []string, cfg Config, output io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("quantizer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&f.in, "in", "", "input media file (omit to open the interactive picker)")
	fs.StringVar(&f.container, "container", "", "output container: mp4|mov|mkv|webm|mp3")
	fs.StringVar(&f.vcodec, "vcodec", "", "video codec: h264|h265|prores|vp9|av1|copy")
	fs.StringVar(&f.acodec, "acodec", "", "audio codec: aac|mp3|opus|copy|none")
	fs.StringVar(&f.preset, "preset", "", "encoder preset: ultrafast ... veryslow")
	fs.IntVar(&f.crf, "crf", -1, "quality factor 0-51 (lower is better)")
	fs.StringVar(&f.scale, "scale", "", `target size as W:H in integers, e.g. 1920:-1 (-1/-2 keep the aspect ratio), or "original"`)
	fs.StringVar(&f.fps, "fps", "", `frame rate 1-120 or "original"`)
	fs.BoolVar(&f.submit, "submit", false, "convert on the remote service instead of printing the command")
	fs.StringVar(&f.api, "api", cfg.APIBaseURL, "conversion API base URL")
	fs.StringVar(&f.logFile, "log-file", cfg.LogFile, "write logs to this file")
	err := fs.Parse(args)
	return f, err
}

// resolveOptions applies the smart defaults for the input and then every
// flag that was set explicitly.
func resolveOptions(f cliFlags, fileName string) (Options, error) {
	opts := ApplySmartDefaults(DefaultOptions(), fileName)
	var err error
	if f.container != "" {
		if opts.Container, err = ParseContainer(f.container); err != nil {
			return opts, err
		}
	}
	if f.vcodec != "" {
		if opts.VideoCodec, err = ParseVideoCodec(f.vcodec); err != nil {
			return opts, err
		}
	}
	if f.acodec != "" {
		if opts.AudioCodec, err = ParseAudioCodec(f.acodec); err != nil {
			return opts, err
		}
	}
	if f.preset != "" {
		if opts.Preset, err = ParsePreset(f.preset); err != nil {
			return opts, err
		}
	}
	if f.crf >= 0 {
		opts.CRF = f.crf
	}
	if f.scale != "" {
		opts.Scale = f.scale
	}
	if f.fps != "" {
		opts.FPS = f.fps
	}
	return opts, opts.Validate()
}

func runHeadless(ctx context.Context, f cliFlags, wf *Workflow, logger hclog.Logger, stdout io.Writer) error {
	src, err := StatSource(f.in)
	if err != nil {
		return err
	}
	opts, err := resolveOptions(f, src.Name)
	if err != nil {
		return err
	}
	if !f.submit {
		fmt.Fprintln(stdout, BuildCommand(opts, src.Name))
		return nil
	}
	err = wf.Run(ctx, src, opts, func(s State) {
		logger.Info("state", "state", s.String(), "file", src.Name)
	})
	if err != nil {
		logger.Error("conversion failed", "file", src.Name, "error", wf.Err())
		return errors.New(DisplayMessage(err))
	}
	logger.Info("converted", "session", wf.SessionID(), "uploaded_as", wf.UploadedName())
	fmt.Fprintln(stdout, wf.DownloadURL())
	return nil
}

func main() {
	cfg := LoadConfig()
	f, err := parseFlags(os.Args[1:], cfg, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}
	cfg.APIBaseURL = strings.TrimRight(f.api, "/")
	cfg.LogFile = f.logFile

	tui := f.in == ""
	logger, closer, err := NewLogger(cfg, tui)
	if err != nil {
		fmt.Println("logging:", err)
		os.Exit(1)
	}
	defer closer.Close()

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		logger.Warn("ffmpeg not found in PATH; generated commands need it to run")
	}

	client := NewClient(cfg.APIBaseURL, &http.Client{}, logger)
	wf := NewWorkflow(client, cfg.MaxUploadSize, logger)

	if !tui {
		if err := runHeadless(context.Background(), f, wf, logger, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			closer.Close()
			os.Exit(1)
		}
		return
	}

	final, err := RunTUI(cfg, wf, logger)
	if err != nil {
		fmt.Println("TUI error:", err)
		closer.Close()
		os.Exit(1)
	}
	if final.canceled {
		fmt.Println("Canceled by user; exiting.")
	}
}
