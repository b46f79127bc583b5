package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway(handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	srv := httptest.NewServer(handler)
	gw := &Gateway{
		Endpoint:  srv.URL,
		ServerKey: "test-key",
		Client:    &http.Client{Timeout: time.Second},
	}
	return gw, srv
}

func TestGatewaySend(t *testing.T) {
	var got pushMessage
	gw, srv := testGateway(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	err := gw.Send(context.Background(), "tok-1", "New Request", "You have a new test request to process.")

	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.To)
	assert.Equal(t, "New Request", got.Data["title"])
}

func TestGatewaySendEmptyToken(t *testing.T) {
	gw := &Gateway{Client: http.DefaultClient}
	assert.Error(t, gw.Send(context.Background(), "", "t", "b"))
}

func TestGatewaySendServerError(t *testing.T) {
	gw, srv := testGateway(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	assert.Error(t, gw.Send(context.Background(), "tok-1", "t", "b"))
}

func TestRecipientGroupTopics(t *testing.T) {
	cases := []struct {
		group  RecipientGroup
		topics []string
	}{
		{AllUsers, []string{"user"}},
		{AllCollectors, []string{"collectors"}},
		{Everyone, []string{"user", "collectors"}},
		{SingleRecipient, nil},
	}
	for _, tc := range cases {
		topics, err := tc.group.Topics()
		require.NoError(t, err)
		assert.Equal(t, tc.topics, topics)
	}

	_, err := RecipientGroup("mystery").Topics()
	assert.Error(t, err)
}

func TestBroadcastEveryone(t *testing.T) {
	var targets []string
	gw, srv := testGateway(func(w http.ResponseWriter, r *http.Request) {
		var msg pushMessage
		json.NewDecoder(r.Body).Decode(&msg)
		targets = append(targets, msg.To)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	b := &Broadcaster{Gateway: gw}
	err := b.Broadcast(context.Background(), Everyone, "Notice", "Service window tonight", "")

	require.NoError(t, err)
	assert.Equal(t, []string{"/topics/user", "/topics/collectors"}, targets)
}

func TestBroadcastSingleNeedsToken(t *testing.T) {
	b := &Broadcaster{Gateway: &Gateway{Client: http.DefaultClient}}
	assert.Error(t, b.Broadcast(context.Background(), SingleRecipient, "t", "b", ""))
}
