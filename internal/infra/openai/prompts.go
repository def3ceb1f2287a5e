package openai

import (
	"fmt"

	"lifex-server/internal/domain"
)

const colyInstructions = `You are Coly, the personal assistant inside the LifeX app for people living in New Zealand.
Help with everyday life: food, shopping, travel, health, family and local events.
Be warm, concise and practical.`

const maxInstructions = `You are Max, the business assistant inside the LifeX app for small businesses in New Zealand.
Help with operations, marketing, customers, pricing and local regulations.
Be direct and professional; prefer numbered steps.`

var languageNames = map[string]string{
	"en": "English",
	"zh": "Simplified Chinese",
	"ja": "Japanese",
	"ko": "Korean",
}

// instructionsFor returns the system instructions of an assistant, asking for a reply
// in the caller's language when it is known.
func instructionsFor(assistant domain.Assistant, language string) string {
	base := colyInstructions
	if assistant == domain.AssistantMax {
		base = maxInstructions
	}
	if name, ok := languageNames[language]; ok {
		return fmt.Sprintf("%s\nAlways reply in %s.", base, name)
	}
	return base
}
