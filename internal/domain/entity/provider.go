package entity

// Provider error types carried in ProviderResult when Success is false.
const (
	ProviderErrTimeout     = "timeout"
	ProviderErrUnavailable = "service_unavailable"
	ProviderErrPermission  = "permission_denied"
	ProviderErrNotFound    = "intent_not_found"
	ProviderErrAPI         = "api_error"
)

// ProviderResult is the uniform envelope returned by the structured-intent
// provider. Success=false means the call itself failed; Success=true with
// Found=false means the provider had no confident answer.
type ProviderResult struct {
	Success    bool              `json:"success"`
	Found      bool              `json:"found"`
	Intent     string            `json:"intent,omitempty"`
	Confidence float32           `json:"confidence"`
	Response   string            `json:"response,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Message    string            `json:"message,omitempty"`
	ErrorType  string            `json:"error_type,omitempty"`
}

// Intent is one entry of the structured-intent table, cached locally for
// direct lookup without a provider round trip.
type Intent struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"display_name"`
	TrainingPhrases []string `json:"training_phrases"`
	Responses       []string `json:"responses"`
}
