package oracle

import (
	"context"
	"errors"
	"sync"
	"time"
)

type stubLLMClient struct {
	mu        sync.Mutex
	response  LLMResponse
	err       error
	lastReq   LLMRequest
	requests  []LLMRequest
	responses []LLMResponse
	errs      []error
	calls     int
}

func (s *stubLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastReq = req
	s.requests = append(s.requests, req)

	if s.calls < len(s.errs) && s.errs[s.calls] != nil {
		err := s.errs[s.calls]
		s.calls++
		return LLMResponse{}, err
	}
	if len(s.responses) > 0 {
		if s.calls >= len(s.responses) {
			s.calls++
			return LLMResponse{}, errors.New("no scripted response")
		}
		resp := s.responses[s.calls]
		s.calls++
		return resp, nil
	}
	s.calls++
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	return s.response, nil
}

// blockingLLMClient waits for the request context to end.
type blockingLLMClient struct{}

func (blockingLLMClient) Complete(ctx context.Context, _ LLMRequest) (LLMResponse, error) {
	<-ctx.Done()
	return LLMResponse{}, ctx.Err()
}

type observation struct {
	op, result string
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observation
}

func (o *recordingObserver) ObserveOracleCall(op, result string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observation{op: op, result: result})
}
