package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/faceless/pkg/domain"
)

// HistoryWindow is the number of most recent history entries forwarded to the model.
const HistoryWindow = 10

const systemPromptTemplate = `You are %s.

Mode: %s (%s)

Instructions:
- Stay completely in character as the persona described
- Respond in a way that matches the persona's personality, speech patterns, and worldview
- %s
- Make your responses engaging, entertaining, and true to the character
- Don't break character or mention that you're an AI unless it's part of your persona
- Keep responses conversational and not too long (2-3 sentences typically)

Remember: You ARE this persona, not an AI pretending to be them.`

// SystemPrompt renders the system instruction for a persona under the given mode.
// Any mode other than ModeUncensored is rendered as ModeRegular.
func SystemPrompt(persona string, mode domain.Mode) string {
	if mode != domain.ModeUncensored {
		mode = domain.ModeRegular
	}
	policy := "Keep responses family-friendly and appropriate"
	if !mode.Filtered() {
		policy = "You can be more creative and edgy while still being helpful"
	}
	return fmt.Sprintf(systemPromptTemplate, strings.TrimSpace(persona), mode, mode.Label(), policy)
}

// BuildContext converts a conversation into the ordered instruction sequence sent to the model:
// the system instruction, the last HistoryWindow history entries (oldest first) and the input.
//
// The window is cut from the raw history before entries with an unknown role are dropped,
// so a window holding unknown entries yields fewer than HistoryWindow instructions.
func BuildContext(history []domain.Turn, persona string, mode domain.Mode, input string) []domain.Instruction {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	out := make([]domain.Instruction, 0, len(history)+2)
	out = append(out, domain.Instruction{
		Role:    domain.InstructionSystem,
		Content: SystemPrompt(persona, mode),
	})

	for _, turn := range history {
		switch turn.Role {
		case domain.RoleHuman:
			out = append(out, domain.Instruction{Role: domain.InstructionUser, Content: turn.Content})
		case domain.RoleAI:
			out = append(out, domain.Instruction{Role: domain.InstructionModel, Content: turn.Content})
		}
	}

	return append(out, domain.Instruction{Role: domain.InstructionUser, Content: input})
}
