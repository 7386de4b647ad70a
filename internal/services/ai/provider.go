package ai

import "net/http"

// NewProvider builds the provider selected by config.Protocol.
func NewProvider(config *Config, logger Logger) (StreamProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	httpClient := &http.Client{}
	switch config.Protocol {
	case ProtocolOpenAI:
		return NewOpenAIProvider(config, httpClient, logger), nil
	default:
		return NewOllamaProvider(config, httpClient, logger), nil
	}
}
