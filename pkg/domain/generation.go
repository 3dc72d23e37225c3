package domain

const (
	// DefaultMaxOutputTokens bounds the length of a single response.
	DefaultMaxOutputTokens = 1024
	// DefaultTemperature balances character consistency against variety.
	DefaultTemperature = 0.7
)

// GenerationParams are the sampling parameters of a model call.
type GenerationParams struct {
	MaxOutputTokens int     `json:"max_output_tokens"`
	Temperature     float64 `json:"temperature"`
}

// DefaultGenerationParams returns the parameters used when none are configured.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		MaxOutputTokens: DefaultMaxOutputTokens,
		Temperature:     DefaultTemperature,
	}
}

// GenerationRequest is the transient input of one response generation.
type GenerationRequest struct {
	Input   string
	Persona string
	Mode    Mode
	History []Turn
}

// GenerationResult is the outcome handed back to callers.
// Filtered is true only when the lexical filter rewrote a successful model response.
type GenerationResult struct {
	Response string `json:"response"`
	Filtered bool   `json:"filtered"`
}
