package comms

import (
	"context"
	"log/slog"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// LogCommunicator logs deliveries instead of transmitting them. Used
// when no communication gateway is configured, so workflows still run
// end to end in development environments.
type LogCommunicator struct{}

var _ Communicator = (*LogCommunicator)(nil)

// Send logs the delivery and reports it as queued
func (*LogCommunicator) Send(
	_ context.Context, channel Channel, recipient api.SubjectID,
	content string, priority api.Priority,
) (*DeliveryResult, error) {
	slog.Info("Message delivery (no gateway configured)",
		slog.String("channel", string(channel)),
		slog.String("recipient", string(recipient)),
		slog.String("priority", string(priority)),
		slog.Int("content_length", len(content)))
	return &DeliveryResult{Status: "queued"}, nil
}
