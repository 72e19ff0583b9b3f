package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWebhookNotifier(t *testing.T) {
	t.Run("requires url", func(t *testing.T) {
		n, err := NewWebhookNotifier("", time.Second, zerolog.Nop())
		assert.Error(t, err)
		assert.Nil(t, n)
	})

	t.Run("defaults timeout", func(t *testing.T) {
		n, err := NewWebhookNotifier("http://hooks.local", 0, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, n.client.Timeout)
	})
}

func TestWebhookNotifier_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("posts payload", func(t *testing.T) {
		var got webhookPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		n, err := NewWebhookNotifier(srv.URL, time.Second, zerolog.Nop())
		require.NoError(t, err)

		err = n.Notify(ctx, "user-a", EventApproved, "your guide was approved", "/guides/guide-1")
		assert.NoError(t, err)
		assert.Equal(t, "user-a", got.TargetUserID)
		assert.Equal(t, "approved", got.Event)
		assert.Equal(t, "/guides/guide-1", got.Link)
		assert.NotEmpty(t, got.SentAt)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		n, err := NewWebhookNotifier(srv.URL, time.Second, zerolog.Nop())
		require.NoError(t, err)

		err = n.Notify(ctx, "user-a", EventRejected, "rejected", "/guides/guide-1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("context timeout surfaces as error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		n, err := NewWebhookNotifier(srv.URL, time.Second, zerolog.Nop())
		require.NoError(t, err)

		tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		err = n.Notify(tctx, "user-a", EventRemoved, "removed", "/guides/guide-1")
		assert.Error(t, err)
	})
}

func TestNoop_Notify(t *testing.T) {
	assert.NoError(t, Noop{}.Notify(context.Background(), "user-a", EventApproved, "", ""))
}
