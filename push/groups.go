package push

import (
	"context"
	"fmt"
)

// RecipientGroup names who a broadcast goes to. The topic strings behind
// the groups ("user", "collectors") are the legacy subscription names the
// mobile apps already use.
type RecipientGroup string

const (
	AllUsers        RecipientGroup = "all-users"
	AllCollectors   RecipientGroup = "all-collectors"
	Everyone        RecipientGroup = "everyone"
	SingleRecipient RecipientGroup = "single"
)

const (
	userTopic      = "user"
	collectorTopic = "collectors"
)

// Topics resolves a group to the concrete topics it fans out to.
// SingleRecipient resolves to none; it delivers by token instead.
func (g RecipientGroup) Topics() ([]string, error) {
	switch g {
	case AllUsers:
		return []string{userTopic}, nil
	case AllCollectors:
		return []string{collectorTopic}, nil
	case Everyone:
		return []string{userTopic, collectorTopic}, nil
	case SingleRecipient:
		return nil, nil
	default:
		return nil, fmt.Errorf("push: unknown recipient group %q", string(g))
	}
}

// Broadcaster fans a message out to a recipient group.
type Broadcaster struct {
	Gateway *Gateway
}

// Broadcast sends title/body to the group. For SingleRecipient, token
// must carry the target device token; for the topic groups it is ignored.
func (b *Broadcaster) Broadcast(ctx context.Context, group RecipientGroup, title, body, token string) error {
	if group == SingleRecipient {
		if token == "" {
			return fmt.Errorf("push: single-recipient broadcast needs a device token")
		}
		return b.Gateway.Send(ctx, token, title, body)
	}

	topics, err := group.Topics()
	if err != nil {
		return err
	}
	for _, topic := range topics {
		if err := b.Gateway.SendTopic(ctx, topic, title, body); err != nil {
			return err
		}
	}
	return nil
}
