package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestParseFlags(t *testing.T) {
	cfg := Config{APIBaseURL: DefaultAPIBaseURL}

	f, err := parseFlags([]string{"-in", "a.mp4", "-crf", "30", "-submit"}, cfg, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if f.in != "a.mp4" || f.crf != 30 || !f.submit || f.api != DefaultAPIBaseURL {
		t.Errorf("unexpected flags %+v", f)
	}

	f, err = parseFlags(nil, cfg, io.Discard)
	if err != nil || f.crf != -1 || f.in != "" {
		t.Errorf("Expected defaults, got %+v %v", f, err)
	}

	if _, err := parseFlags([]string{"-h"}, cfg, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("Expected flag.ErrHelp, got %v", err)
	}
}

func TestResolveOptions(t *testing.T) {
	tests := []struct {
		name    string
		flags   cliFlags
		file    string
		want    Options
		wantErr bool
	}{
		{
			name:  "smart defaults only",
			flags: cliFlags{crf: -1},
			file:  "shot.jpg",
			want: Options{Container: ContainerWebP, VideoCodec: VideoCopy, AudioCodec: AudioAAC,
				Preset: PresetMedium, CRF: 23, Scale: Original, FPS: Original},
		},
		{
			name:  "flags override smart defaults",
			flags: cliFlags{container: "mkv", vcodec: "libx265", acodec: "an", preset: "slow", crf: 0, scale: "1280:-1", fps: "30"},
			file:  "trip.mov",
			want: Options{Container: ContainerMKV, VideoCodec: VideoH265, AudioCodec: AudioNone,
				Preset: PresetSlow, CRF: 0, Scale: "1280:-1", FPS: "30"},
		},
		{name: "unknown container", flags: cliFlags{container: "avi", crf: -1}, file: "a.mp4", wantErr: true},
		{name: "unknown codec", flags: cliFlags{vcodec: "divx", crf: -1}, file: "a.mp4", wantErr: true},
		{name: "crf out of range", flags: cliFlags{crf: 52}, file: "a.mp4", wantErr: true},
		{name: "bad scale", flags: cliFlags{crf: -1, scale: "big"}, file: "a.mp4", wantErr: true},
		{name: "scale expression", flags: cliFlags{crf: -1, scale: "iw/2:-1"}, file: "a.mp4", wantErr: true},
		{name: "bad fps", flags: cliFlags{crf: -1, fps: "0"}, file: "a.mp4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveOptions(tt.flags, tt.file)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRunHeadlessPrintsCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Trip Video.mov", 128)
	api := okAPI()
	wf := NewWorkflow(api, DefaultMaxUploadMB*1024*1024, nil)

	tests := []struct {
		flags cliFlags
		want  string
	}{
		{
			flags: cliFlags{in: path, crf: -1},
			want:  `ffmpeg -i "Trip Video.mov" -c:v libx264 -preset medium -crf 23 -c:a aac -movflags +faststart "Trip_Video_converted.mp4"`,
		},
		{
			flags: cliFlags{in: path, container: "mkv", vcodec: "h265", acodec: "none", crf: 28, scale: "1280:-1"},
			want:  `ffmpeg -i "Trip Video.mov" -c:v libx265 -preset medium -crf 28 -vf scale=1280:-1 -an "Trip_Video_converted.mkv"`,
		},
		{
			flags: cliFlags{in: path, container: "mp3", acodec: "none", crf: -1, fps: "24"},
			want:  `ffmpeg -i "Trip Video.mov" -vn -c:a libmp3lame "Trip_Video_converted.mp3"`,
		},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if err := runHeadless(context.Background(), tt.flags, wf, hclog.NewNullLogger(), &out); err != nil {
			t.Fatalf("runHeadless: %v", err)
		}
		if got := strings.TrimSpace(out.String()); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
	if api.uploads != 0 {
		t.Errorf("printing a command must not touch the API, got %d uploads", api.uploads)
	}
}

func TestRunHeadlessSubmit(t *testing.T) {
	f, srv := newFakeService(t)
	path := writeFile(t, t.TempDir(), "Trip Video.mov", 4096)

	client := NewClient(srv.URL+"/api/v1", srv.Client(), nil)
	wf := NewWorkflow(client, DefaultMaxUploadMB*1024*1024, nil)

	var out bytes.Buffer
	err := runHeadless(context.Background(), cliFlags{in: path, crf: -1, submit: true}, wf, hclog.NewNullLogger(), &out)
	if err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	want := srv.URL + "/downloads/abc123/Trip_Video_converted.mp4"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gotPath != "/api/v1/convert/abc123" {
		t.Errorf("unexpected convert path %q", f.gotPath)
	}
	if f.gotConvert["container"] != "mp4" || f.gotConvert["video_codec"] != "libx264" {
		t.Errorf("unexpected convert body %v", f.gotConvert)
	}
}

func TestRunHeadlessSubmitFailure(t *testing.T) {
	f, srv := newFakeService(t)
	f.convStatus = 400
	f.convBody = `{"detail":"Codec not supported"}`
	path := writeFile(t, t.TempDir(), "clip.mp4", 512)

	wf := NewWorkflow(NewClient(srv.URL+"/api/v1", srv.Client(), nil), DefaultMaxUploadMB*1024*1024, nil)

	var out bytes.Buffer
	err := runHeadless(context.Background(), cliFlags{in: path, crf: -1, submit: true}, wf, hclog.NewNullLogger(), &out)
	if err == nil || err.Error() != "Codec not supported" {
		t.Errorf("Expected the server detail, got %v", err)
	}
	if out.Len() != 0 || wf.State() != StateError {
		t.Errorf("Expected no output and error state, got %q %s", out.String(), wf.State())
	}
}

func TestRunHeadlessMissingFile(t *testing.T) {
	wf := NewWorkflow(okAPI(), 0, nil)
	err := runHeadless(context.Background(), cliFlags{in: "/does/not/exist.mp4", crf: -1}, wf, hclog.NewNullLogger(), &bytes.Buffer{})
	if err == nil {
		t.Error("Expected an error for a missing input")
	}
}
