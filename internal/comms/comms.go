// Package comms defines the outbound collaborator contracts used by the
// message action: the communication service that transmits rendered
// content, and the compliance service that screens it first. Both are
// black boxes to the engine.
package comms

import (
	"context"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// Channel identifies a delivery channel
	Channel string

	// DeliveryResult describes the outcome of a transmission attempt
	DeliveryResult struct {
		Status      string `json:"status"`
		ProviderRef string `json:"provider_ref,omitempty"`
	}

	// ComplianceResult describes the outcome of a content check
	ComplianceResult struct {
		Flagged  bool   `json:"flagged"`
		Redacted string `json:"redacted_content,omitempty"`
	}

	// Communicator transmits rendered content to a recipient
	Communicator interface {
		Send(
			ctx context.Context, channel Channel, recipient api.SubjectID,
			content string, priority api.Priority,
		) (*DeliveryResult, error)
	}

	// ComplianceChecker screens content before transmission
	ComplianceChecker interface {
		Check(ctx context.Context, content string) (*ComplianceResult, error)
	}
)

const (
	ChannelSMS   Channel = "sms"
	ChannelVoice Channel = "voice"
	ChannelVideo Channel = "video"
	ChannelApp   Channel = "app"
)
