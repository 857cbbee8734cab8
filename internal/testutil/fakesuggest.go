package testutil

import (
	"context"
	"sync"

	"taskpad/internal/service"
)

// FakeSuggestionService returns canned suggestions.
type FakeSuggestionService struct {
	mu sync.Mutex

	// Suggestions is returned for every call unless Err is set.
	Suggestions []service.TodoSuggestion

	// Err is returned instead of suggestions.
	Err error

	Inputs []string
}

// Suggest implements service.SuggestionService.
func (f *FakeSuggestionService) Suggest(ctx context.Context, input string) ([]service.TodoSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inputs = append(f.Inputs, input)
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]service.TodoSuggestion, len(f.Suggestions))
	copy(out, f.Suggestions)
	return out, nil
}

// Calls returns the number of Suggest calls.
func (f *FakeSuggestionService) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Inputs)
}
