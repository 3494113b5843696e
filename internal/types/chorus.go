package types

// --- Datasets ---

// Dataset is a named document collection backed by a vector store collection.
type Dataset struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	FileCount      int        `json:"file_count"`
	CollectionName string     `json:"collection_name,omitempty"`
	CreatedAt      string     `json:"created_at"`
	Files          []FileInfo `json:"files,omitempty"`
}

// CreateDatasetRequest is the body of POST /datasets.
type CreateDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FileInfo describes a file stored in a dataset. Content is only set by the
// file content endpoint.
type FileInfo struct {
	ID          int    `json:"id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	ChunksCount int    `json:"chunks_count"`
	CreatedAt   string `json:"created_at"`
	Content     string `json:"content,omitempty"`
}

// --- Chorus models ---

// LLMRef selects one model of one provider.
type LLMRef struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ChorusModel is an ensemble of responder LLMs judged by evaluator LLMs.
type ChorusModel struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	ResponderLLMs []LLMRef `json:"responder_llms"`
	EvaluatorLLMs []LLMRef `json:"evaluator_llms"`
	CreatedAt     string   `json:"created_at"`
}

// CreateChorusModelRequest is the body of POST /chorus-models.
type CreateChorusModelRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	ResponderLLMs []LLMRef `json:"responder_llms"`
	EvaluatorLLMs []LLMRef `json:"evaluator_llms"`
}

// --- Bots ---

// Bot answers chat messages with a chorus model over an optional dataset.
type Bot struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Instructions    string `json:"instructions"`
	DatasetID       *int   `json:"dataset_id"`
	ChorusModelID   *int   `json:"chorus_model_id"`
	RAGResultsCount int    `json:"rag_results_count"`
	CreatedAt       string `json:"created_at"`
}

// CreateBotRequest is the body of POST /bots.
type CreateBotRequest struct {
	Name            string `json:"name"`
	Instructions    string `json:"instructions"`
	DatasetID       *int   `json:"dataset_id,omitempty"`
	ChorusModelID   *int   `json:"chorus_model_id,omitempty"`
	RAGResultsCount *int   `json:"rag_results_count,omitempty"`
}

// ChatRequest is the body of POST /bots/{id}/chat.
type ChatRequest struct {
	Message       string         `json:"message"`
	RAGCount      *int           `json:"rag_count,omitempty"`
	ImageSettings map[string]any `json:"image_settings,omitempty"`
}

// ChatResponse is the bot answer. Debug carries the per-responder answers
// and votes when the backend includes them.
type ChatResponse struct {
	Response     string         `json:"response"`
	Intent       string         `json:"intent"`
	RAGCountUsed int            `json:"rag_count_used,omitempty"`
	Debug        map[string]any `json:"debug,omitempty"`
}

// ChatHistoryEntry is one exchange of a bot conversation.
type ChatHistoryEntry struct {
	ID          int    `json:"id"`
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
	CreatedAt   string `json:"created_at"`
}

// --- Misc ---

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// MessageResponse is the acknowledgement returned by delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body produced by the backend.
type ErrorResponse struct {
	Error string `json:"error"`
}
