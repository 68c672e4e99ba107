package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// EncodeSSE renders the event as a server-sent-events frame: an `event:` line
// naming the variant, an `id:` line with the delivery id, and a `data:` line
// with the JSON payload. KeepAlive is a comment frame so clients never
// interpret it as application data.
//
// The switch is exhaustive over the closed variant set; an unknown type or a
// payload of the wrong shape is a programming error and returns one.
func EncodeSSE(e Event) ([]byte, error) {
	if e.Type == TypeKeepAlive {
		p, ok := e.Payload.(KeepAlivePayload)
		if !ok {
			return nil, fmt.Errorf("event: keep_alive with %T payload", e.Payload)
		}
		return []byte(fmt.Sprintf(": keep-alive %s\n\n", p.At.UTC().Format(time.RFC3339))), nil
	}

	switch e.Type {
	case TypeNewMessage:
		if _, ok := e.Payload.(MessagePayload); !ok {
			return nil, fmt.Errorf("event: %s with %T payload", e.Type, e.Payload)
		}
	case TypeChannelRenamed:
		if _, ok := e.Payload.(ChannelPayload); !ok {
			return nil, fmt.Errorf("event: %s with %T payload", e.Type, e.Payload)
		}
	case TypeMemberJoined, TypeMemberLeft:
		if _, ok := e.Payload.(MemberPayload); !ok {
			return nil, fmt.Errorf("event: %s with %T payload", e.Type, e.Payload)
		}
	case TypeNewInvitation, TypeInvitationAccepted:
		if _, ok := e.Payload.(InvitationPayload); !ok {
			return nil, fmt.Errorf("event: %s with %T payload", e.Type, e.Payload)
		}
	case TypeUsernameChanged:
		if _, ok := e.Payload.(UserPayload); !ok {
			return nil, fmt.Errorf("event: %s with %T payload", e.Type, e.Payload)
		}
	default:
		return nil, fmt.Errorf("event: unknown type %q", e.Type)
	}

	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("event: marshal %s payload: %w", e.Type, err)
	}
	return []byte(fmt.Sprintf("event: %s\nid: %d\ndata: %s\n\n", e.Type, e.DeliveryID, data)), nil
}
