package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

type stubStt struct{ name string }

func (s stubStt) Name() string { return s.name }
func (s stubStt) TranscribeAudio(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	return "", nil
}

type stubAi struct{ name string }

func (s stubAi) Name() string { return s.name }
func (s stubAi) GenerateReply(ctx context.Context, req repositories.GenerateRequest) (string, error) {
	return "", nil
}

type stubTts struct{ name string }

func (s stubTts) Name() string { return s.name }
func (s stubTts) SynthesizeAudio(ctx context.Context, text string, config repositories.VoiceConfig) ([]byte, error) {
	return nil, nil
}

func TestFirstRegisteredBecomesDefault(t *testing.T) {
	reg := New(zap.NewNop())
	reg.RegisterStt(stubStt{name: "google"})
	reg.RegisterStt(stubStt{name: "whisper"})

	p, err := reg.ResolveStt("")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if p.Name() != "google" {
		t.Errorf("default = %q, want first registered %q", p.Name(), "google")
	}
}

func TestSetDefault(t *testing.T) {
	reg := New(zap.NewNop())
	reg.RegisterAi(stubAi{name: "gemini"})
	reg.RegisterAi(stubAi{name: "openai"})

	if err := reg.SetDefault(RoleAi, "openai"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	p, err := reg.ResolveAi("")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("default = %q, want %q", p.Name(), "openai")
	}

	if err := reg.SetDefault(RoleAi, "nonexistent"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestResolveByName(t *testing.T) {
	reg := New(zap.NewNop())
	reg.RegisterTts(stubTts{name: "elevenlabs"})
	reg.RegisterTts(stubTts{name: "openai"})

	p, err := reg.ResolveTts("openai")
	if err != nil {
		t.Fatalf("resolve by name: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("resolved %q, want %q", p.Name(), "openai")
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	reg := New(zap.NewNop())
	reg.RegisterStt(stubStt{name: "google"})

	_, err := reg.ResolveStt("deepgram")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestAvailableSorted(t *testing.T) {
	reg := New(zap.NewNop())
	reg.RegisterStt(stubStt{name: "whisper"})
	reg.RegisterStt(stubStt{name: "google"})
	reg.RegisterAi(stubAi{name: "gemini"})
	reg.RegisterTts(stubTts{name: "elevenlabs"})

	got := reg.Available()
	want := map[string][]string{
		"stt": {"google", "whisper"},
		"ai":  {"gemini"},
		"tts": {"elevenlabs"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}

	defaults := reg.Defaults()
	if defaults["stt"] != "whisper" {
		t.Errorf("stt default = %q, want %q", defaults["stt"], "whisper")
	}
}
