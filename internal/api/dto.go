package api

// createSessionRequest starts a new learning session.
type createSessionRequest struct {
	Topic       string   `json:"topic" validate:"required,min=1,max=200"`
	Type        string   `json:"type" validate:"required,oneof=fast depth"`
	DocumentIDs []string `json:"document_ids" validate:"omitempty,dive,uuid4"`
}

// answerQuestionRequest submits an evaluation answer.
type answerQuestionRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// prerequisiteResultsRequest records the outcome of a prerequisite evaluation.
type prerequisiteResultsRequest struct {
	Results map[string]bool `json:"results" validate:"required,min=1"`
}

// addDocumentRequest uploads study material as extracted text.
type addDocumentRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required,min=1"`
}
