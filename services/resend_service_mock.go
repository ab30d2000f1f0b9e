package services

import (
	"context"
	"fmt"
	"sync"
)

// MockEmailService is an in-memory EmailService implementation for testing
type MockEmailService struct {
	mu             sync.RWMutex
	sentEmails     []*OutboundEmail
	inboundEmails  map[string]*InboundEmail
	sendErr        error
	retrievalErr   error
	nextEmailIDSeq int
}

// NewMockEmailService creates a new mock email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{
		inboundEmails: make(map[string]*InboundEmail),
	}
}

// SendEmail records the outbound email and returns a synthetic identifier
func (m *MockEmailService) SendEmail(ctx context.Context, email *OutboundEmail) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return "", m.sendErr
	}

	m.nextEmailIDSeq++
	m.sentEmails = append(m.sentEmails, email)
	return fmt.Sprintf("mock-email-%d", m.nextEmailIDSeq), nil
}

// GetReceivedEmail returns a previously registered inbound email
func (m *MockEmailService) GetReceivedEmail(ctx context.Context, emailID string) (*InboundEmail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.retrievalErr != nil {
		return nil, m.retrievalErr
	}

	email, ok := m.inboundEmails[emailID]
	if !ok {
		return nil, fmt.Errorf("email not found in mock provider: %s", emailID)
	}
	return email, nil
}

// AddInboundEmail registers an inbound email for retrieval by tests
func (m *MockEmailService) AddInboundEmail(email *InboundEmail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inboundEmails[email.ID] = email
}

// SentEmails returns a copy of all emails sent so far
func (m *MockEmailService) SentEmails() []*OutboundEmail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sent := make([]*OutboundEmail, len(m.sentEmails))
	copy(sent, m.sentEmails)
	return sent
}

// FailSends makes subsequent SendEmail calls return the given error
func (m *MockEmailService) FailSends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// FailRetrievals makes subsequent GetReceivedEmail calls return the given error
func (m *MockEmailService) FailRetrievals(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrievalErr = err
}
