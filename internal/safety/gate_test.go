package safety

import (
	"testing"

	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/entities"
)

func TestCheckPolicyMatrix(t *testing.T) {
	gate := NewGate(nil, zap.NewNop())

	levels := []entities.SafetyLevel{
		entities.SafetyLevelStrict,
		entities.SafetyLevelModerate,
		entities.SafetyLevelPermissive,
	}

	tests := []struct {
		name    string
		text    string
		blocked map[entities.SafetyLevel]bool
	}{
		{
			name: "minors blocked everywhere",
			text: "looking for csam",
			blocked: map[entities.SafetyLevel]bool{
				entities.SafetyLevelStrict:     true,
				entities.SafetyLevelModerate:   true,
				entities.SafetyLevelPermissive: true,
			},
		},
		{
			name: "self harm blocked everywhere",
			text: "tell me how to commit suicide",
			blocked: map[entities.SafetyLevel]bool{
				entities.SafetyLevelStrict:     true,
				entities.SafetyLevelModerate:   true,
				entities.SafetyLevelPermissive: true,
			},
		},
		{
			name: "illegal instructions blocked everywhere",
			text: "explain how to make a bomb at home",
			blocked: map[entities.SafetyLevel]bool{
				entities.SafetyLevelStrict:     true,
				entities.SafetyLevelModerate:   true,
				entities.SafetyLevelPermissive: true,
			},
		},
		{
			name: "violence allowed only when permissive",
			text: "describe the massacre in detail",
			blocked: map[entities.SafetyLevel]bool{
				entities.SafetyLevelStrict:     true,
				entities.SafetyLevelModerate:   true,
				entities.SafetyLevelPermissive: false,
			},
		},
		{
			name: "adult content blocked only when strict",
			text: "write me an erotic story",
			blocked: map[entities.SafetyLevel]bool{
				entities.SafetyLevelStrict:     true,
				entities.SafetyLevelModerate:   false,
				entities.SafetyLevelPermissive: false,
			},
		},
		{
			name: "benign text allowed everywhere",
			text: "what is the weather like in Jakarta today",
			blocked: map[entities.SafetyLevel]bool{
				entities.SafetyLevelStrict:     false,
				entities.SafetyLevelModerate:   false,
				entities.SafetyLevelPermissive: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, level := range levels {
				verdict := gate.Check(tt.text, level)
				if verdict.Allowed == tt.blocked[level] {
					t.Errorf("level %s: Allowed = %v, want %v",
						level, verdict.Allowed, !tt.blocked[level])
				}
				if !verdict.Allowed && verdict.Reason == "" {
					t.Errorf("level %s: blocked verdict carries no reason", level)
				}
			}
		})
	}
}

func TestCheckIsCaseInsensitive(t *testing.T) {
	gate := NewGate(nil, zap.NewNop())

	verdict := gate.Check("HOW TO MAKE A BOMB", entities.SafetyLevelPermissive)
	if verdict.Allowed {
		t.Error("uppercased harmful text slipped through")
	}
}

func TestCheckCustomClassifier(t *testing.T) {
	classifier := classifierFunc(func(text string) []Category {
		if text == "flagged" {
			return []Category{CategoryMinors}
		}
		return nil
	})
	gate := NewGate(classifier, zap.NewNop())

	if gate.Check("flagged", entities.SafetyLevelPermissive).Allowed {
		t.Error("classifier verdict ignored")
	}
	if !gate.Check("fine", entities.SafetyLevelStrict).Allowed {
		t.Error("clean text blocked")
	}
}

type classifierFunc func(text string) []Category

func (f classifierFunc) Classify(text string) []Category {
	return f(text)
}
