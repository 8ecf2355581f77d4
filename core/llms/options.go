package llms

// PromptOptions is a struct that contains all the options for a prompt.
type PromptOptions struct {
	Instructions    string
	Turns           []Turn
	Stream          func(string)
	Tools           []Tool
	ForcedToolsCall bool
	Temperature     *float64
}

// PromptOption is a function that can be used to modify the prompt options.
type PromptOption func(*PromptOptions)

// WithStream is a PromptOption that sets the stream callback for the prompt.
func WithStream(stream func(string)) PromptOption {
	return func(opts *PromptOptions) {
		opts.Stream = stream
	}
}

// WithSystemPrompt is a PromptOption that sets the system prompt for the
// prompt.
// Repeating this option will overwrite the previous system prompt.
func WithSystemPrompt(prompt string) PromptOption {
	return func(opts *PromptOptions) {
		opts.Instructions = prompt
	}
}

// WithTurns is a PromptOption that adds turns information to the prompt.
// Repeating this option will sequentially add more turns.
func WithTurns(turns ...Turn) PromptOption {
	return func(opts *PromptOptions) {
		opts.Turns = append(opts.Turns, turns...)
	}
}

// WithTools is a PromptOption that adds tools to the prompt.
// Repeating this option will sequentially add more tools.
func WithTools(tools ...Tool) PromptOption {
	return func(opts *PromptOptions) {
		opts.Tools = append(opts.Tools, tools...)
	}
}

// WithTemperature is a PromptOption that sets the sampling temperature for
// this prompt, overriding any client-level default.
func WithTemperature(temperature float64) PromptOption {
	return func(opts *PromptOptions) {
		opts.Temperature = &temperature
	}
}

// WithForcedTools is a PromptOption that forces the use of tools in the
// prompt. Note that any tool that is available can be used, not just the ones
// passed into this option.
func WithForcedTools(tools ...Tool) PromptOption {
	return func(opts *PromptOptions) {
		opts.Tools = tools
		opts.ForcedToolsCall = true
	}
}
