package main

import "testing"

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	want := Options{
		Container:  ContainerMP4,
		VideoCodec: VideoH264,
		AudioCodec: AudioAAC,
		Preset:     PresetMedium,
		CRF:        23,
		Scale:      "original",
		FPS:        "original",
	}
	if o != want {
		t.Errorf("Expected %+v, got %+v", want, o)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestCodecIdentifiers(t *testing.T) {
	video := map[VideoCodec]string{
		VideoH264: "libx264", VideoH265: "libx265", VideoProRes: "prores_ks",
		VideoVP9: "libvpx-vp9", VideoAV1: "libaom-av1", VideoCopy: "copy",
	}
	for c, id := range video {
		if c.ID() != id {
			t.Errorf("%s: expected %q, got %q", c, id, c.ID())
		}
	}
	audio := map[AudioCodec]string{
		AudioAAC: "aac", AudioMP3: "libmp3lame", AudioOpus: "libopus", AudioCopy: "copy", AudioNone: "",
	}
	for c, id := range audio {
		if c.ID() != id {
			t.Errorf("%s: expected %q, got %q", c, id, c.ID())
		}
	}
	if len(Presets) != 9 || Presets[0] != PresetUltrafast || Presets[8] != PresetVeryslow {
		t.Errorf("unexpected preset order: %v", Presets)
	}
}

func TestApplySmartDefaults(t *testing.T) {
	base := DefaultOptions()
	base.CRF = 30
	base.Container = ContainerMKV
	base.VideoCodec = VideoVP9

	tests := []struct {
		name      string
		file      string
		container Container
		video     VideoCodec
	}{
		{"mov", "clip.mov", ContainerMP4, VideoH264},
		{"upper case MOV", "CLIP.MOV", ContainerMP4, VideoH264},
		{"png", "shot.png", ContainerWebP, VideoCopy},
		{"jpg", "photo.jpg", ContainerWebP, VideoCopy},
		{"jpeg is left alone", "photo.jpeg", ContainerMKV, VideoVP9},
		{"mp4 is left alone", "clip.mp4", ContainerMKV, VideoVP9},
		{"no extension", "clip", ContainerMKV, VideoVP9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySmartDefaults(base, tt.file)
			if got.Container != tt.container || got.VideoCodec != tt.video {
				t.Errorf("Expected %s/%s, got %s/%s", tt.container, tt.video, got.Container, got.VideoCodec)
			}
			if got.CRF != 30 || got.AudioCodec != base.AudioCodec {
				t.Errorf("other fields changed: %+v", got)
			}
		})
	}
}

func TestParsers(t *testing.T) {
	if c, err := ParseContainer(".MKV"); err != nil || c != ContainerMKV {
		t.Errorf("ParseContainer(.MKV) = %v, %v", c, err)
	}
	if _, err := ParseContainer("avi"); err == nil {
		t.Error("Expected error for avi container")
	}
	if v, err := ParseVideoCodec("libx265"); err != nil || v != VideoH265 {
		t.Errorf("ParseVideoCodec(libx265) = %v, %v", v, err)
	}
	if v, err := ParseVideoCodec("ProRes"); err != nil || v != VideoProRes {
		t.Errorf("ParseVideoCodec(ProRes) = %v, %v", v, err)
	}
	if a, err := ParseAudioCodec("none"); err != nil || a != AudioNone {
		t.Errorf("ParseAudioCodec(none) = %v, %v", a, err)
	}
	if a, err := ParseAudioCodec("an"); err != nil || a != AudioNone {
		t.Errorf("ParseAudioCodec(an) = %v, %v", a, err)
	}
	if a, err := ParseAudioCodec("libmp3lame"); err != nil || a != AudioMP3 {
		t.Errorf("ParseAudioCodec(libmp3lame) = %v, %v", a, err)
	}
	if _, err := ParseAudioCodec(""); err == nil {
		t.Error("Expected error for empty audio codec")
	}
	if p, err := ParsePreset("VerySlow"); err != nil || p != PresetVeryslow {
		t.Errorf("ParsePreset(VerySlow) = %v, %v", p, err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Options)
		ok    bool
	}{
		{"crf low bound", func(o *Options) { o.CRF = 0 }, true},
		{"crf high bound", func(o *Options) { o.CRF = 51 }, true},
		{"crf too high", func(o *Options) { o.CRF = 52 }, false},
		{"crf negative", func(o *Options) { o.CRF = -1 }, false},
		{"scale expression", func(o *Options) { o.Scale = "1920:-1" }, true},
		{"scale -2", func(o *Options) { o.Scale = "-2:720" }, true},
		{"scale garbage", func(o *Options) { o.Scale = "big" }, false},
		{"fps 120", func(o *Options) { o.FPS = "120" }, true},
		{"fps 0", func(o *Options) { o.FPS = "0" }, false},
		{"fps 121", func(o *Options) { o.FPS = "121" }, false},
		{"fps text", func(o *Options) { o.FPS = "fast" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.apply(&o)
			if err := o.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestUnknownCodecValues(t *testing.T) {
	if VideoCodec(42).ID() != "" || AudioCodec(-1).ID() != "" {
		t.Error("Expected empty id for out-of-range codecs")
	}
	if VideoCodec(42).String() != "video(42)" {
		t.Errorf("unexpected name %q", VideoCodec(42).String())
	}
}
