package overlay_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/polybus/internal/domain/event"
	overlaysvc "github.com/alanyang/polybus/internal/service/overlay"
	"github.com/alanyang/polybus/internal/testutil"
	transportoverlay "github.com/alanyang/polybus/internal/transport/overlay"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(ready bool) (*gin.Engine, *overlaysvc.Service) {
	svc := overlaysvc.NewService(&testutil.RecordingBroadcaster{})
	if ready {
		svc.OnLoadGame(event.LoadGame{})
	}
	r := gin.New()
	transportoverlay.Register(r.Group("/overlay"), svc)
	return r, svc
}

func TestDrawText(t *testing.T) {
	tests := []struct {
		name        string
		ready       bool
		body        string
		wantCode    int
		wantPending int
	}{
		{"queued when ready", true, `{"text":"hello","x":10,"y":10}`, http.StatusAccepted, 1},
		{"conflict before load", false, `{"text":"hello"}`, http.StatusConflict, 0},
		{"empty text", true, `{"text":""}`, http.StatusBadRequest, 0},
		{"malformed json", true, `{"text":`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := newRouter(tt.ready)

			w := httptest.NewRecorder()
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/overlay/text", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantPending, svc.Pending())
		})
	}
}

func TestStatus(t *testing.T) {
	r, _ := newRouter(true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/overlay", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Ready    bool                `json:"ready"`
		Viewport overlaysvc.Viewport `json:"viewport"`
		Pending  int                 `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Ready)
	assert.Equal(t, overlaysvc.DefaultWidth, resp.Viewport.Width)
	assert.Zero(t, resp.Pending)
}
