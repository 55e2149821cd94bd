package rag

import (
	"errors"
	"fmt"
)

// Error classes surfaced by the retrieval and answering paths. Concrete
// errors wrap one of these so callers can branch with errors.Is.
var (
	// ErrEmbeddingService indicates the embedding service failed or returned
	// an unusable response.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrVectorStore indicates an insert or similarity search failed.
	ErrVectorStore = errors.New("vector store error")

	// ErrLanguageModel indicates the chat model invocation failed.
	ErrLanguageModel = errors.New("language model error")
)

// EmbeddingStatusError is returned when the embedding service answers with a
// non-success HTTP status. It carries the status and the raw response body.
type EmbeddingStatusError struct {
	// StatusCode is the numeric HTTP status, e.g. 500.
	StatusCode int
	// Status is the textual status line, e.g. "500 Internal Server Error".
	Status string
	// Body is the response body as returned by the service.
	Body string
}

// Error implements the error interface.
func (e *EmbeddingStatusError) Error() string {
	return fmt.Sprintf("embedding service returned %s: %s", e.Status, e.Body)
}

// Is reports EmbeddingStatusError as an ErrEmbeddingService.
func (e *EmbeddingStatusError) Is(target error) bool {
	return target == ErrEmbeddingService
}
