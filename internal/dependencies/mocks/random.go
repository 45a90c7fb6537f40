package mocks

import (
	"fmt"

	"github.com/keyfold/keyfold/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing. String and
// Token return queued results when available, or a deterministic
// sequence-numbered value otherwise.
type MockRandom struct {
	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int

	// TokenResults is a queue of results to return from Token
	TokenResults []string
	tokenIndex   int

	calls int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn always returns 0
func (r *MockRandom) Intn(n int) int {
	return 0
}

// String returns the next queued result, or a deterministic placeholder
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex < len(r.StringResults) {
		result := r.StringResults[r.stringIndex]
		r.stringIndex++
		return result
	}
	r.calls++
	return fmt.Sprintf("mock-string-%d", r.calls)
}

// Token returns the next queued result, or a deterministic placeholder
func (r *MockRandom) Token(numBytes int) string {
	if r.tokenIndex < len(r.TokenResults) {
		result := r.TokenResults[r.tokenIndex]
		r.tokenIndex++
		return result
	}
	r.calls++
	return fmt.Sprintf("mock-token-%d", r.calls)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.TokenResults = append(r.TokenResults, values...)
}
