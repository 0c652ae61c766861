package models

// Generation provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderGateway   = "gateway"
)

// Providers lists every provider name in preference order.
var Providers = []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGateway}
