package notifier

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

func TestTelegram_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.BaseURL = srv.URL
	require.NoError(t, tn.Send(context.Background(), Preformatted("a < b")))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<pre>a &lt; b</pre>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegram_SendWithRetryStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.BaseURL = srv.URL
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := tn.SendWithRetry(ctx, "hi", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
