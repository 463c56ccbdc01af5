package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-store/pkg/devtools"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Inspector adapts state transitions to a go-users ActivitySink, so store
// activity lands in the same audit stream as user activity.
type Inspector struct {
	Sink usertypes.ActivitySink

	// ActorID attributes transitions to a user when known.
	ActorID string
}

// Connect opens a recording connection for one store.
func (i Inspector) Connect(label string) (devtools.Conn, error) {
	return &conn{
		sink:         i.Sink,
		actorID:      parseUUID(i.ActorID),
		storeLabel:   label,
		connectionID: uuid.NewString(),
	}, nil
}

type conn struct {
	sink         usertypes.ActivitySink
	actorID      uuid.UUID
	storeLabel   string
	connectionID string
}

// Send maps the transition into an ActivityRecord and forwards it to the sink.
func (c *conn) Send(label string, state any) error {
	if c.sink == nil {
		return nil
	}

	verb := strings.TrimSpace(label)
	if verb == "" {
		return nil
	}

	record := usertypes.ActivityRecord{
		ActorID:    c.actorID,
		Verb:       verb,
		ObjectType: "store",
		ObjectID:   c.storeLabel,
		Channel:    "devtools",
		Data: map[string]any{
			"connection_id": c.connectionID,
			"state":         state,
		},
		OccurredAt: time.Now(),
	}
	return c.sink.Log(context.Background(), record)
}

func parseUUID(input string) uuid.UUID {
	value := strings.TrimSpace(input)
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
