package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Sandbox is an in-process Processor for local development and tests.
// Intents are confirmed immediately, so they report StatusSucceeded.
type Sandbox struct {
	mu      sync.Mutex
	intents map[string]Intent
	// FailWith, when set, is returned by CreateIntent.
	FailWith error
}

func NewSandbox() *Sandbox {
	return &Sandbox{intents: make(map[string]Intent)}
}

func (s *Sandbox) CreateIntent(_ context.Context, req IntentRequest) (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return Intent{}, s.FailWith
	}
	if req.Amount <= 0 {
		return Intent{}, errors.New("This value must be greater than or equal to 1.")
	}

	id := "pi_sandbox_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	in := Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString()[:8],
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       StatusSucceeded,
		Email:        req.Email,
	}
	s.intents[id] = in
	return in, nil
}

func (s *Sandbox) GetIntent(_ context.Context, id string) (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.intents[id]
	if !ok {
		return Intent{}, &processorError{msg: fmt.Sprintf("No such payment_intent: '%s'", id), err: ErrIntentNotFound}
	}
	return in, nil
}

// SetStatus moves an intent to status, e.g. to simulate a declined card.
func (s *Sandbox) SetStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in, ok := s.intents[id]; ok {
		in.Status = status
		s.intents[id] = in
	}
}
