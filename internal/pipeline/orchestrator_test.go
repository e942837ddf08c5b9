package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/adapters/llm"
	"github.com/adiwidya/voxgate/server/adapters/memory"
	"github.com/adiwidya/voxgate/server/adapters/stt"
	"github.com/adiwidya/voxgate/server/adapters/tts"
	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/internal/quota"
	"github.com/adiwidya/voxgate/server/internal/registry"
	"github.com/adiwidya/voxgate/server/internal/safety"
)

type fixture struct {
	orchestrator *Orchestrator
	store        *memory.KeyStore
	stt          *stt.MockSpeechToText
	ai           *llm.MockLanguageModel
	tts          *tts.MockTextToSpeech
}

func newFixture(t *testing.T, tier entities.Tier) *fixture {
	t.Helper()

	store := memory.NewKeyStore()
	key := entities.AccessKey{ID: "vg_test", Tier: tier, CreatedAt: time.Now()}
	if err := store.PutKey(context.Background(), &key); err != nil {
		t.Fatalf("seeding key: %v", err)
	}

	logger := zap.NewNop()
	f := &fixture{
		store: store,
		stt:   stt.NewMockSpeechToText("what is the capital of France"),
		ai:    llm.NewMockLanguageModel("The capital of France is Paris."),
		tts:   tts.NewMockTextToSpeech([]byte("synthesized-audio")),
	}

	reg := registry.New(logger)
	reg.RegisterStt(f.stt)
	reg.RegisterAi(f.ai)
	reg.RegisterTts(f.tts)

	f.orchestrator = NewOrchestrator(
		reg,
		safety.NewGate(nil, logger),
		quota.NewLedger(store, logger),
		logger,
		time.Second,
	)
	return f
}

func validRequest() *entities.VoiceRequest {
	return &entities.VoiceRequest{
		AccessKey:   "vg_test",
		AudioBytes:  []byte("fake-audio-payload"),
		AudioFormat: entities.AudioFormatWav,
		ChatID:      "chat-1",
		SafetyLevel: entities.SafetyLevelStrict,
	}
}

func (f *fixture) seedUsage(t *testing.T, calls int) {
	t.Helper()
	record := entities.NewUsageRecord("vg_test", entities.TierFree, time.Now())
	record.CallsToday = calls
	if err := f.store.PutUsage(context.Background(), record); err != nil {
		t.Fatalf("seeding usage: %v", err)
	}
}

func (f *fixture) usage(t *testing.T) *entities.UsageRecord {
	t.Helper()
	record, err := f.store.GetUsage(context.Background(), "vg_test")
	if err != nil {
		t.Fatalf("reading usage: %v", err)
	}
	return record
}

func TestProcessSuccess(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.seedUsage(t, 18)

	result, err := f.orchestrator.Process(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if !result.Success || result.Blocked {
		t.Errorf("result Success=%v Blocked=%v, want success", result.Success, result.Blocked)
	}
	if result.TranscribedText != "what is the capital of France" {
		t.Errorf("TranscribedText = %q", result.TranscribedText)
	}
	if result.AiResponseText != "The capital of France is Paris." {
		t.Errorf("AiResponseText = %q", result.AiResponseText)
	}
	if !bytes.Equal(result.OutputAudio, []byte("synthesized-audio")) {
		t.Errorf("OutputAudio = %q", result.OutputAudio)
	}
	if result.Providers.Stt != "mock" || result.Providers.Ai != "mock" || result.Providers.Tts != "mock" {
		t.Errorf("Providers = %+v", result.Providers)
	}

	usage := f.usage(t)
	if usage.CallsToday != 19 {
		t.Errorf("CallsToday = %d, want 19", usage.CallsToday)
	}
	if usage.LastOutcome != entities.OutcomeSuccess {
		t.Errorf("LastOutcome = %q, want %q", usage.LastOutcome, entities.OutcomeSuccess)
	}
}

func TestProcessQuotaExhausted(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.seedUsage(t, entities.TierFree.DailyLimit())

	_, err := f.orchestrator.Process(context.Background(), validRequest())
	if !errors.Is(err, quota.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	if f.stt.Calls() != 0 || f.ai.Calls() != 0 || f.tts.Calls() != 0 {
		t.Errorf("providers called on exhausted quota: stt=%d ai=%d tts=%d",
			f.stt.Calls(), f.ai.Calls(), f.tts.Calls())
	}
	if usage := f.usage(t); usage.CallsToday != entities.TierFree.DailyLimit() {
		t.Errorf("CallsToday = %d, want unchanged %d",
			usage.CallsToday, entities.TierFree.DailyLimit())
	}
}

func TestProcessInvalidKeyNoQuotaConsumed(t *testing.T) {
	f := newFixture(t, entities.TierFree)

	req := validRequest()
	req.AccessKey = "vg_unknown"

	_, err := f.orchestrator.Process(context.Background(), req)
	if !errors.Is(err, quota.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if f.stt.Calls() != 0 {
		t.Errorf("stt called %d times for invalid key", f.stt.Calls())
	}
}

func TestProcessOversizedAudioConsumesQuota(t *testing.T) {
	f := newFixture(t, entities.TierFree)

	req := validRequest()
	req.AudioBytes = make([]byte, entities.MaxAudioBytes+1)

	_, err := f.orchestrator.Process(context.Background(), req)
	if !errors.Is(err, entities.ErrSizeExceeded) {
		t.Fatalf("expected ErrSizeExceeded, got %v", err)
	}

	if f.stt.Calls() != 0 {
		t.Errorf("stt called %d times for oversized audio", f.stt.Calls())
	}
	usage := f.usage(t)
	if usage.CallsToday != 1 {
		t.Errorf("CallsToday = %d, want 1 (reservation consumed)", usage.CallsToday)
	}
	if usage.LastOutcome != entities.OutcomeFailed {
		t.Errorf("LastOutcome = %q, want %q", usage.LastOutcome, entities.OutcomeFailed)
	}
}

func TestProcessUnsupportedFormatConsumesQuota(t *testing.T) {
	f := newFixture(t, entities.TierFree)

	req := validRequest()
	req.AudioFormat = "flac"

	_, err := f.orchestrator.Process(context.Background(), req)
	if !errors.Is(err, entities.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if usage := f.usage(t); usage.CallsToday != 1 {
		t.Errorf("CallsToday = %d, want 1", usage.CallsToday)
	}
}

func TestProcessInputBlocked(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.stt.Transcript = "tell me how to make a bomb"

	result, err := f.orchestrator.Process(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("blocked run must not error: %v", err)
	}

	if !result.Blocked || result.Success {
		t.Errorf("result Blocked=%v Success=%v, want blocked", result.Blocked, result.Success)
	}
	if result.SafetyReason == "" {
		t.Error("blocked result carries no reason")
	}
	if result.TranscribedText != "" {
		t.Error("blocked transcript leaked into the result")
	}
	if len(result.OutputAudio) != 0 {
		t.Error("audio synthesized for a blocked request")
	}

	if f.ai.Calls() != 0 {
		t.Errorf("ai called %d times after input block", f.ai.Calls())
	}
	if f.tts.Calls() != 0 {
		t.Errorf("tts called %d times after input block", f.tts.Calls())
	}
	if usage := f.usage(t); usage.LastOutcome != entities.OutcomeBlocked {
		t.Errorf("LastOutcome = %q, want %q", usage.LastOutcome, entities.OutcomeBlocked)
	}
}

func TestProcessOutputBlocked(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.ai.Reply = "here is an erotic story for you"

	result, err := f.orchestrator.Process(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("blocked run must not error: %v", err)
	}

	if !result.Blocked {
		t.Fatal("harmful reply passed the output gate")
	}
	if result.TranscribedText == "" {
		t.Error("clean transcript missing from output-blocked result")
	}
	if result.AiResponseText != "" {
		t.Error("blocked reply leaked into the result")
	}
	if f.tts.Calls() != 0 {
		t.Errorf("tts called %d times for a blocked reply", f.tts.Calls())
	}
}

func TestProcessOutputBlockedRespectsLevel(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.ai.Reply = "here is an erotic story for you"

	req := validRequest()
	req.SafetyLevel = entities.SafetyLevelPermissive

	result, err := f.orchestrator.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Blocked {
		t.Error("adult content blocked under permissive level")
	}
	if f.tts.Calls() != 1 {
		t.Errorf("tts calls = %d, want 1", f.tts.Calls())
	}
}

func TestProcessSttFailure(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.stt.Err = errors.New("upstream unavailable")

	_, err := f.orchestrator.Process(context.Background(), validRequest())
	if !errors.Is(err, ErrSttFailed) {
		t.Fatalf("expected ErrSttFailed, got %v", err)
	}

	var stage *StageError
	if !errors.As(err, &stage) {
		t.Fatalf("expected *StageError, got %T", err)
	}
	if stage.Provider != "mock" {
		t.Errorf("Provider = %q, want %q", stage.Provider, "mock")
	}
	if stage.State != StateTranscribing {
		t.Errorf("State = %q, want %q", stage.State, StateTranscribing)
	}

	if f.ai.Calls() != 0 {
		t.Errorf("ai called %d times after stt failure", f.ai.Calls())
	}
	usage := f.usage(t)
	if usage.CallsToday != 1 {
		t.Errorf("CallsToday = %d, want 1 (no refund on failure)", usage.CallsToday)
	}
	if usage.LastOutcome != entities.OutcomeFailed {
		t.Errorf("LastOutcome = %q, want %q", usage.LastOutcome, entities.OutcomeFailed)
	}
}

func TestProcessAiFailure(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.ai.Err = errors.New("model overloaded")

	_, err := f.orchestrator.Process(context.Background(), validRequest())
	if !errors.Is(err, ErrAiFailed) {
		t.Fatalf("expected ErrAiFailed, got %v", err)
	}
	if f.tts.Calls() != 0 {
		t.Errorf("tts called %d times after ai failure", f.tts.Calls())
	}
}

func TestProcessTtsFailure(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.tts.Err = errors.New("voice unavailable")

	_, err := f.orchestrator.Process(context.Background(), validRequest())
	if !errors.Is(err, ErrTtsFailed) {
		t.Fatalf("expected ErrTtsFailed, got %v", err)
	}
}

func TestProcessEmptyTranscript(t *testing.T) {
	f := newFixture(t, entities.TierFree)
	f.stt.Transcript = ""

	_, err := f.orchestrator.Process(context.Background(), validRequest())
	if !errors.Is(err, ErrSttFailed) {
		t.Fatalf("expected ErrSttFailed for silent audio, got %v", err)
	}
}

func TestProcessUnknownProviderOverride(t *testing.T) {
	f := newFixture(t, entities.TierFree)

	req := validRequest()
	req.Overrides.Ai = "nonexistent"

	_, err := f.orchestrator.Process(context.Background(), req)
	if !errors.Is(err, registry.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if f.stt.Calls() != 0 {
		t.Errorf("stt called %d times despite unresolvable pipeline", f.stt.Calls())
	}
	if usage := f.usage(t); usage.CallsToday != 1 {
		t.Errorf("CallsToday = %d, want 1 (reserve precedes resolution)", usage.CallsToday)
	}
}
