package model

// ================ Config ================

// AssistantModelConfig configures the tool-bound model that drives the turn
// loop.
type AssistantModelConfig struct {
	Model       string  `envconfig:"ASSISTANT_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"ASSISTANT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"ASSISTANT_TEMPERATURE" default:"0.4"`
}

// KnowledgeModelConfig configures the plain model used by the triage and
// hospital-info tools.
type KnowledgeModelConfig struct {
	Model       string  `envconfig:"KNOWLEDGE_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"KNOWLEDGE_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"KNOWLEDGE_TEMPERATURE" default:"0.2"`
}

// ConversationConfig tunes the turn loop and thread storage.
type ConversationConfig struct {
	// TTL bounds how long an idle thread is kept before eviction.
	TTL string `envconfig:"CONVERSATION_TTL" default:"1h"`
	// MaxAttempts bounds model invocations per turn when the model keeps
	// returning empty content. Provider errors are not retried at all.
	MaxAttempts int `envconfig:"CONVERSATION_MAX_ATTEMPTS" default:"3"`
	// ModelTimeout is the per-invocation deadline in seconds; a timeout is
	// treated as a provider failure.
	ModelTimeout int `envconfig:"CONVERSATION_MODEL_TIMEOUT" default:"30"`
}

// PromptConfig parameterises the system prompt.
type PromptConfig struct {
	HospitalName string `envconfig:"PROMPT_HOSPITAL_NAME" default:"Sunrise Medical Center"`
	Timezone     string `envconfig:"PROMPT_TIMEZONE" default:"Asia/Kolkata"`
}
