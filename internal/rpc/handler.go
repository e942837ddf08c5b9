package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/internal/pipeline"
	"github.com/adiwidya/voxgate/server/internal/prompts"
	"github.com/adiwidya/voxgate/server/internal/quota"
	"github.com/adiwidya/voxgate/server/internal/registry"
)

// Method names exposed on the socket. process_voice is the only method
// that runs the pipeline; the rest are thin reads.
const (
	MethodProcessVoice       = "process_voice"
	MethodAvailableProviders = "get_available_providers"
	MethodCheckVoiceUsage    = "check_voice_usage"
	MethodBasePrompts        = "get_base_prompts"
)

// Handler dispatches decoded JSON-RPC requests onto the gateway services.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	registry     *registry.Registry
	ledger       *quota.Ledger
	logger       *zap.Logger
}

// NewHandler creates the method dispatcher.
func NewHandler(
	orch *pipeline.Orchestrator,
	reg *registry.Registry,
	ledger *quota.Ledger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		orchestrator: orch,
		registry:     reg,
		ledger:       ledger,
		logger:       logger,
	}
}

// Dispatch executes one request and produces its response.
func (h *Handler) Dispatch(ctx context.Context, req *Request) Response {
	if req.JSONRPC != Version || req.Method == "" {
		return NewError(req.ID, CodeInvalidRequest, "invalid request", nil)
	}

	switch req.Method {
	case MethodProcessVoice:
		return h.processVoice(ctx, req)
	case MethodAvailableProviders:
		return NewResult(req.ID, map[string]interface{}{
			"providers": h.registry.Available(),
			"defaults":  h.registry.Defaults(),
		})
	case MethodCheckVoiceUsage:
		return h.checkVoiceUsage(ctx, req)
	case MethodBasePrompts:
		return NewResult(req.ID, map[string]interface{}{
			"prompts": prompts.Catalog(),
		})
	default:
		return NewError(req.ID, CodeMethodNotFound, "method not found: "+req.Method, nil)
	}
}

func (h *Handler) processVoice(ctx context.Context, req *Request) Response {
	var params ProcessVoiceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewError(req.ID, CodeInvalidParams, "invalid process_voice params: "+err.Error(), nil)
	}

	voiceReq, decodeErr := DecodeVoiceRequest(&params)

	// A base prompt naming a catalog preset expands to the preset text;
	// anything else passes through as a literal prompt override.
	if preset, ok := prompts.Lookup(voiceReq.BasePrompt); ok {
		voiceReq.BasePrompt = preset.Text
	}

	started := time.Now()
	result, err := h.orchestrator.Process(ctx, voiceReq)
	if err != nil {
		// The run still consumed its quota unit when the payload failed to
		// decode; surface the decode cause rather than the empty-audio
		// symptom it produced.
		if decodeErr != nil && errors.Is(err, entities.ErrEmptyAudio) {
			err = decodeErr
		}
		rpcErr := MapError(err)
		h.logger.Warn("process_voice failed",
			zap.Int("code", rpcErr.Code),
			zap.Error(err))
		return Response{JSONRPC: Version, ID: req.ID, Error: rpcErr}
	}

	h.logger.Info("process_voice completed",
		zap.Bool("success", result.Success),
		zap.Bool("blocked", result.Blocked),
		zap.Duration("elapsed", time.Since(started)))

	return NewResult(req.ID, EncodeResult(result))
}

func (h *Handler) checkVoiceUsage(ctx context.Context, req *Request) Response {
	var params struct {
		AccessKey string `json:"access_key"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewError(req.ID, CodeInvalidParams, "invalid check_voice_usage params: "+err.Error(), nil)
	}

	record, err := h.ledger.Peek(ctx, params.AccessKey)
	if err != nil {
		rpcErr := MapError(err)
		return Response{JSONRPC: Version, ID: req.ID, Error: rpcErr}
	}

	return NewResult(req.ID, UsageProjection(record))
}

// UsageProjection is the external view of a usage record.
func UsageProjection(record *entities.UsageRecord) map[string]interface{} {
	return map[string]interface{}{
		"tier":         record.Tier,
		"daily_limit":  record.DailyLimit,
		"calls_today":  record.CallsToday,
		"remaining":    record.Remaining(),
		"window_start": record.WindowStart,
		"resets_at":    record.ResetsAt(),
	}
}
