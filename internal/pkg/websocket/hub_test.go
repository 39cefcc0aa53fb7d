package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniconnect/api/internal/middleware"
)

type staticMembership map[uuid.UUID]bool

func (m staticMembership) IsMember(_ context.Context, _ uuid.UUID, accountID uuid.UUID) (bool, error) {
	return m[accountID], nil
}

func TestChannelName(t *testing.T) {
	id := uuid.MustParse("9f1c2d4e-0000-4000-8000-000000000007")
	ch := Channel{CommunityID: id, Kind: KindNewComment}
	assert.Equal(t, "newComentario_9f1c2d4e-0000-4000-8000-000000000007", ch.Name())
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(1, zerolog.Nop())
	go hub.Run()
	defer hub.Close()

	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			hub.Publish(Channel{CommunityID: uuid.New(), Kind: KindNewPublication}, map[string]int{"n": i})
		}
	})
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(0, zerolog.Nop())
	go hub.Run()

	hub.Close()
	hub.Close()

	assert.NotPanics(t, func() {
		hub.Publish(Channel{CommunityID: uuid.New(), Kind: KindDeleteComment}, "x")
	})
	assert.False(t, hub.Subscribe(&Client{send: make(chan []byte, 1)}))
}

func TestHub_UnserializablePayloadIsDropped(t *testing.T) {
	hub := NewHub(0, zerolog.Nop())
	defer hub.Close()

	assert.NotPanics(t, func() {
		hub.Publish(Channel{CommunityID: uuid.New(), Kind: KindNewPublication}, make(chan int))
	})
}

func TestOriginPolicy(t *testing.T) {
	policy := NewOriginPolicy([]string{"https://app.example.edu", " ", "not a url"}, zerolog.Nop())

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://app.example.edu", true},
		{"HTTPS://APP.EXAMPLE.EDU", true},
		{"https://evil.example.com", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, policy.Check(r), tt.origin)
	}

	all := NewOriginPolicy([]string{"*"}, zerolog.Nop())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://anything.test")
	assert.True(t, all.Check(r))
}

// newTestServer mounts the subscribe handler behind a stub auth step that
// takes the account id from the X-Account header
func newTestServer(t *testing.T, hub *Hub, membership MembershipChecker) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewHandler(hub, membership, NewOriginPolicy([]string{"*"}, zerolog.Nop()), zerolog.Nop())
	router.GET("/comunidades/:id/ws", func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader("X-Account")); err == nil {
			c.Set(middleware.ContextKeyAccountID, id)
		}
		c.Next()
	}, handler.Subscribe)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, communityID, accountID uuid.UUID) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/comunidades/" + communityID.String() + "/ws"
	header := http.Header{}
	header.Set("X-Account", accountID.String())
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHandler_FanOutToCommunityMembers(t *testing.T) {
	hub := NewHub(0, zerolog.Nop())
	go hub.Run()
	defer hub.Close()

	member := uuid.New()
	c7 := uuid.New()
	c8 := uuid.New()
	srv := newTestServer(t, hub, staticMembership{member: true})

	conn, _, err := dial(t, srv, c7, member)
	require.NoError(t, err)
	defer conn.Close()

	other, _, err := dial(t, srv, c8, member)
	require.NoError(t, err)
	defer other.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount(c7) == 1 && hub.ClientCount(c8) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(Channel{CommunityID: c7, Kind: KindNewPublication}, map[string]string{"texto": "hola"})
	hub.Publish(Channel{CommunityID: c7, Kind: KindDeletePublication}, map[string]string{"publicacionId": "p1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var first, second Frame
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, "newPublication_"+c7.String(), first.Event)
	assert.JSONEq(t, `{"texto":"hola"}`, string(first.Data))
	assert.Equal(t, "deletePublication_"+c7.String(), second.Event)

	// the other community's subscriber sees nothing
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHandler_RejectsNonMembers(t *testing.T) {
	hub := NewHub(0, zerolog.Nop())
	go hub.Run()
	defer hub.Close()

	srv := newTestServer(t, hub, staticMembership{})
	_, resp, err := dial(t, srv, uuid.New(), uuid.New())
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
}

func TestHandler_RequiresAccount(t *testing.T) {
	hub := NewHub(0, zerolog.Nop())
	go hub.Run()
	defer hub.Close()

	srv := newTestServer(t, hub, staticMembership{})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/comunidades/" + uuid.NewString() + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(0, zerolog.Nop())
	go hub.Run()

	member := uuid.New()
	c7 := uuid.New()
	srv := newTestServer(t, hub, staticMembership{member: true})

	conn, _, err := dial(t, srv, c7, member)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(c7) == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, hub.ClientCount(c7))
}

func TestHub_RevokeMemberStopsDelivery(t *testing.T) {
	hub := NewHub(0, zerolog.Nop())
	go hub.Run()
	defer hub.Close()

	leaver := uuid.New()
	stayer := uuid.New()
	c7 := uuid.New()
	srv := newTestServer(t, hub, staticMembership{leaver: true, stayer: true})

	gone, _, err := dial(t, srv, c7, leaver)
	require.NoError(t, err)
	defer gone.Close()
	kept, _, err := dial(t, srv, c7, stayer)
	require.NoError(t, err)
	defer kept.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(c7) == 2 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, hub.RevokeMember(c7, leaver))
	assert.Zero(t, hub.RevokeMember(c7, leaver))
	assert.Equal(t, 1, hub.ClientCount(c7))

	hub.Publish(Channel{CommunityID: c7, Kind: KindNewPublication}, map[string]string{"texto": "solo miembros"})

	require.NoError(t, kept.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame Frame
	require.NoError(t, kept.ReadJSON(&frame))
	assert.Equal(t, "newPublication_"+c7.String(), frame.Event)

	// the revoked socket is closed instead of receiving the event
	require.NoError(t, gone.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = gone.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
