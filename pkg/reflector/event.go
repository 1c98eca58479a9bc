// Package reflector polls an upstream event queue for descriptor-change
// events, fetches the referenced descriptor document, and mirrors it into
// the Descriptor Store.
package reflector

import "github.com/cz-vaporeon/basin/pkg/descriptor"

// DescriptorEvent is the inner payload of an enveloped event.
type DescriptorEvent struct {
	Type          string          `json:"type"`
	DescriptorURI string          `json:"descriptorURI"`
	Kind          descriptor.Kind `json:"kind"`
	Revision      int64           `json:"revision"`
}

// EnvelopedEvent is the JSON body of one event-queue message.
type EnvelopedEvent struct {
	EventID  string          `json:"event_id"`
	Type     string          `json:"type"`
	Payload  DescriptorEvent `json:"payload"`
	Resource string          `json:"resource,omitempty"`
	Time     string          `json:"time,omitempty"`
}
