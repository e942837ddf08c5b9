package safety

import (
	"strings"

	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/entities"
)

// Category labels the kind of content a classifier flagged.
type Category string

const (
	// CategoryMinors covers sexual content involving minors. Blocked at
	// every level without exception.
	CategoryMinors   Category = "sexual_minors"
	CategorySelfHarm Category = "self_harm"
	CategoryIllegal  Category = "illegal_activity"
	CategoryExplicit Category = "explicit"
	CategoryViolence Category = "violence"
	CategoryAdult    Category = "adult"
)

// Classifier flags the content categories present in a text.
type Classifier interface {
	Classify(text string) []Category
}

// Gate applies the leveled safety policy on top of a classifier. It is
// called twice per pipeline run: on the transcript and on the AI reply.
type Gate struct {
	classifier Classifier
	logger     *zap.Logger
}

// NewGate creates a gate over the given classifier. A nil classifier falls
// back to the built-in lexicon classifier.
func NewGate(classifier Classifier, logger *zap.Logger) *Gate {
	if classifier == nil {
		classifier = NewLexiconClassifier()
	}
	return &Gate{classifier: classifier, logger: logger}
}

// Check classifies text and applies the policy for the requested level.
func (g *Gate) Check(text string, level entities.SafetyLevel) entities.SafetyVerdict {
	for _, category := range g.classifier.Classify(text) {
		if blockedAt(category, level) {
			g.logger.Warn("Content blocked by safety gate",
				zap.String("category", string(category)),
				zap.String("level", string(level)))
			return entities.SafetyVerdict{
				Allowed: false,
				Reason:  reasonFor(category),
				Level:   level,
			}
		}
	}
	return entities.SafetyVerdict{Allowed: true, Level: level}
}

// blockedAt encodes the policy matrix. Clearly harmful categories are
// blocked at every level; explicit and violent content from moderate up;
// broad adult content only under strict.
func blockedAt(category Category, level entities.SafetyLevel) bool {
	switch category {
	case CategoryMinors, CategorySelfHarm, CategoryIllegal:
		return true
	case CategoryExplicit, CategoryViolence:
		return level == entities.SafetyLevelStrict || level == entities.SafetyLevelModerate
	case CategoryAdult:
		return level == entities.SafetyLevelStrict
	}
	return false
}

func reasonFor(category Category) string {
	switch category {
	case CategoryMinors:
		return "content involving minors is not permitted"
	case CategorySelfHarm:
		return "content promoting self-harm is not permitted"
	case CategoryIllegal:
		return "instructions for illegal activity are not permitted"
	case CategoryExplicit:
		return "explicit content is not permitted at this safety level"
	case CategoryViolence:
		return "violent content is not permitted at this safety level"
	case CategoryAdult:
		return "adult content is not permitted at this safety level"
	}
	return "content not permitted"
}

// LexiconClassifier is the default keyword-based classifier. The real
// classifier model sits behind an external service in production; this
// implementation covers the policy surface the gate needs.
type LexiconClassifier struct {
	lexicon map[Category][]string
}

// NewLexiconClassifier creates a classifier with the built-in lexicon.
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{lexicon: defaultLexicon()}
}

// Classify returns every category whose lexicon matches the text.
func (c *LexiconClassifier) Classify(text string) []Category {
	lowered := strings.ToLower(text)

	var categories []Category
	for category, terms := range c.lexicon {
		for _, term := range terms {
			if strings.Contains(lowered, term) {
				categories = append(categories, category)
				break
			}
		}
	}
	return categories
}

func defaultLexicon() map[Category][]string {
	return map[Category][]string{
		CategoryMinors: {
			"child porn", "minor sexual", "underage sex", "csam",
		},
		CategorySelfHarm: {
			"kill myself", "how to commit suicide", "hurt myself",
			"self-harm method",
		},
		CategoryIllegal: {
			"how to make a bomb", "make explosives", "synthesize meth",
			"launder money", "steal a car",
		},
		CategoryExplicit: {
			"explicit sexual", "pornographic", "xxx",
		},
		CategoryViolence: {
			"torture", "massacre", "how to kill", "dismember",
		},
		CategoryAdult: {
			"nsfw", "erotic", "sexual fantasy", "nude",
		},
	}
}
