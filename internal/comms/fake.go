package comms

import (
	"context"
	"strings"
	"sync"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// SentMessage records one delivery made through a FakeCommunicator
	SentMessage struct {
		Channel   Channel
		Recipient api.SubjectID
		Content   string
		Priority  api.Priority
	}

	// FakeCommunicator is an in-memory Communicator for tests
	FakeCommunicator struct {
		mu   sync.Mutex
		sent []SentMessage
		Err  error
	}

	// FakeComplianceChecker is an in-memory ComplianceChecker for tests.
	// FlagSubstring marks content containing it as flagged.
	FakeComplianceChecker struct {
		FlagSubstring string
		Err           error
	}
)

var (
	_ Communicator      = (*FakeCommunicator)(nil)
	_ ComplianceChecker = (*FakeComplianceChecker)(nil)
)

// Send records the delivery and reports success
func (f *FakeCommunicator) Send(
	_ context.Context, channel Channel, recipient api.SubjectID,
	content string, priority api.Priority,
) (*DeliveryResult, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, SentMessage{
		Channel:   channel,
		Recipient: recipient,
		Content:   content,
		Priority:  priority,
	})
	return &DeliveryResult{
		Status:      "delivered",
		ProviderRef: "fake-1",
	}, nil
}

// Sent returns a copy of all recorded deliveries
func (f *FakeCommunicator) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]SentMessage, len(f.sent))
	copy(res, f.sent)
	return res
}

// Check flags content containing the configured substring
func (f *FakeComplianceChecker) Check(
	_ context.Context, content string,
) (*ComplianceResult, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.FlagSubstring != "" && strings.Contains(content, f.FlagSubstring) {
		return &ComplianceResult{Flagged: true}, nil
	}
	return &ComplianceResult{}, nil
}
