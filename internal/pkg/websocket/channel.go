package websocket

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventKind names a content event inside a community
type EventKind string

const (
	KindNewPublication    EventKind = "newPublication"
	KindDeletePublication EventKind = "deletePublication"
	KindNewComment        EventKind = "newComentario"
	KindUpdateComment     EventKind = "updateComentario"
	KindDeleteComment     EventKind = "deleteComentario"
)

// Channel is a community-scoped event stream
type Channel struct {
	CommunityID uuid.UUID
	Kind        EventKind
}

// Name is the wire event name, "<kind>_<communityId>"
func (c Channel) Name() string {
	return string(c.Kind) + "_" + c.CommunityID.String()
}

// Frame is what subscribers receive for every event
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
