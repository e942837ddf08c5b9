package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/domain/repositories"
	"github.com/adiwidya/voxgate/server/internal/quota"
	"github.com/adiwidya/voxgate/server/internal/registry"
	"github.com/adiwidya/voxgate/server/internal/safety"
)

// State enumerates the pipeline state machine. Blocked and Failed are
// terminal and reachable from any stage.
type State string

const (
	StateReceived          State = "received"
	StateTranscribing      State = "transcribing"
	StateInputSafetyCheck  State = "input_safety_check"
	StateGenerating        State = "generating"
	StateOutputSafetyCheck State = "output_safety_check"
	StateSynthesizing      State = "synthesizing"
	StateComplete          State = "complete"
	StateBlocked           State = "blocked"
	StateFailed            State = "failed"
)

const defaultCallTimeout = 30 * time.Second

// Orchestrator drives one voice request through
// STT → safety → AI → safety → TTS, enforcing quota before the first
// provider call and short-circuiting on a blocked verdict.
//
// Provider calls run sequentially since each stage's output feeds the next;
// no lock is held across a run. Each external call gets a bounded wait, and
// a timeout is treated like any other provider error.
type Orchestrator struct {
	registry    *registry.Registry
	gate        *safety.Gate
	ledger      *quota.Ledger
	logger      *zap.Logger
	callTimeout time.Duration
}

// NewOrchestrator creates the pipeline orchestrator. callTimeout bounds
// each provider invocation; zero selects the default.
func NewOrchestrator(
	reg *registry.Registry,
	gate *safety.Gate,
	ledger *quota.Ledger,
	logger *zap.Logger,
	callTimeout time.Duration,
) *Orchestrator {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Orchestrator{
		registry:    reg,
		gate:        gate,
		ledger:      ledger,
		logger:      logger,
		callTimeout: callTimeout,
	}
}

// Process runs one pipeline. A Blocked outcome is a normal result, not an
// error. Auth and quota failures return before any quota unit or provider
// call is spent; everything after a successful reserve consumes the unit,
// including malformed audio.
func (o *Orchestrator) Process(ctx context.Context, req *entities.VoiceRequest) (result *entities.PipelineResult, err error) {
	reservation, err := o.ledger.Reserve(ctx, req.AccessKey)
	if err != nil {
		return nil, err
	}

	outcome := entities.OutcomeFailed
	defer func() {
		o.ledger.Commit(ctx, reservation, outcome)
	}()

	state := StateReceived
	log := o.logger.With(zap.String("key", req.AccessKey))

	if err := req.Validate(); err != nil {
		o.transition(log, state, StateFailed)
		return nil, err
	}

	stt, err := o.registry.ResolveStt(req.Overrides.Stt)
	if err != nil {
		o.transition(log, state, StateFailed)
		return nil, err
	}
	ai, err := o.registry.ResolveAi(req.Overrides.Ai)
	if err != nil {
		o.transition(log, state, StateFailed)
		return nil, err
	}
	tts, err := o.registry.ResolveTts(req.Overrides.Tts)
	if err != nil {
		o.transition(log, state, StateFailed)
		return nil, err
	}

	providers := entities.ProvidersUsed{
		Stt: stt.Name(),
		Ai:  ai.Name(),
		Tts: tts.Name(),
	}

	// Received → Transcribing
	state = o.transition(log, state, StateTranscribing)
	transcript, err := o.transcribe(ctx, stt, req)
	if err != nil {
		o.transition(log, state, StateFailed)
		return nil, &StageError{State: StateTranscribing, Provider: stt.Name(), Err: err}
	}

	// Transcribing → InputSafetyCheck
	state = o.transition(log, state, StateInputSafetyCheck)
	if verdict := o.gate.Check(transcript, req.SafetyLevel); !verdict.Allowed {
		o.transition(log, state, StateBlocked)
		outcome = entities.OutcomeBlocked
		// Stop here: the blocked transcript never reaches the model.
		return &entities.PipelineResult{
			Blocked:      true,
			SafetyReason: verdict.Reason,
			Providers:    providers,
			ChatID:       req.ChatID,
		}, nil
	}

	// InputSafetyCheck → Generating
	state = o.transition(log, state, StateGenerating)
	reply, err := o.generate(ctx, ai, transcript, req)
	if err != nil {
		o.transition(log, state, StateFailed)
		return nil, &StageError{State: StateGenerating, Provider: ai.Name(), Err: err}
	}

	// Generating → OutputSafetyCheck
	state = o.transition(log, state, StateOutputSafetyCheck)
	if verdict := o.gate.Check(reply, req.SafetyLevel); !verdict.Allowed {
		o.transition(log, state, StateBlocked)
		outcome = entities.OutcomeBlocked
		// The blocked reply is neither returned nor synthesized.
		return &entities.PipelineResult{
			TranscribedText: transcript,
			Blocked:         true,
			SafetyReason:    verdict.Reason,
			Providers:       providers,
			ChatID:          req.ChatID,
		}, nil
	}

	// OutputSafetyCheck → Synthesizing
	state = o.transition(log, state, StateSynthesizing)
	audio, err := o.synthesize(ctx, tts, reply)
	if err != nil {
		o.transition(log, state, StateFailed)
		return nil, &StageError{State: StateSynthesizing, Provider: tts.Name(), Err: err}
	}

	o.transition(log, state, StateComplete)
	outcome = entities.OutcomeSuccess

	return &entities.PipelineResult{
		Success:         true,
		TranscribedText: transcript,
		AiResponseText:  reply,
		OutputAudio:     audio,
		Providers:       providers,
		ChatID:          req.ChatID,
	}, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, stt repositories.SpeechToText, req *entities.VoiceRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	transcript, err := stt.TranscribeAudio(ctx, req.AudioBytes, repositories.AudioConfig{
		Format: req.AudioFormat,
	})
	if err != nil {
		return "", err
	}
	if transcript == "" {
		return "", fmt.Errorf("no speech detected in audio")
	}
	return transcript, nil
}

func (o *Orchestrator) generate(ctx context.Context, ai repositories.LanguageModel, transcript string, req *entities.VoiceRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	return ai.GenerateReply(ctx, repositories.GenerateRequest{
		Transcript:   transcript,
		ChatID:       req.ChatID,
		SystemPrompt: req.BasePrompt,
	})
}

func (o *Orchestrator) synthesize(ctx context.Context, tts repositories.TextToSpeech, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	return tts.SynthesizeAudio(ctx, text, repositories.VoiceConfig{})
}

func (o *Orchestrator) transition(log *zap.Logger, from, to State) State {
	log.Debug("Pipeline transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return to
}
