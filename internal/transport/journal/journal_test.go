package journal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/polybus/internal/domain/event"
	"github.com/alanyang/polybus/internal/mocks"
	journalsvc "github.com/alanyang/polybus/internal/service/journal"
	transportjournal "github.com/alanyang/polybus/internal/transport/journal"
)

func init() { gin.SetMode(gin.TestMode) }

func TestRecent(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		setup    func(repo *mocks.MockJournalRepository)
		wantCode int
		wantLen  int
	}{
		{
			name:  "default limit",
			query: "",
			setup: func(repo *mocks.MockJournalRepository) {
				repo.EXPECT().Recent(gomock.Any(), journalsvc.DefaultRecentLimit).
					Return([]event.Record{{Category: event.NameKeyboard}, {Category: event.NameLoadGame}}, nil)
			},
			wantCode: http.StatusOK,
			wantLen:  2,
		},
		{
			name:  "explicit limit",
			query: "?limit=1",
			setup: func(repo *mocks.MockJournalRepository) {
				repo.EXPECT().Recent(gomock.Any(), 1).Return([]event.Record{{Category: event.NameKeyboard}}, nil)
			},
			wantCode: http.StatusOK,
			wantLen:  1,
		},
		{
			name:  "limit is capped",
			query: "?limit=999999",
			setup: func(repo *mocks.MockJournalRepository) {
				repo.EXPECT().Recent(gomock.Any(), 1000).Return(nil, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "invalid limit returns 400",
			query:    "?limit=-3",
			setup:    func(*mocks.MockJournalRepository) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "repo error returns 500",
			query: "",
			setup: func(repo *mocks.MockJournalRepository) {
				repo.EXPECT().Recent(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockJournalRepository(ctrl)
			tt.setup(repo)
			r := gin.New()
			transportjournal.Register(r.Group("/journal"), journalsvc.NewService(repo, false))

			w := httptest.NewRecorder()
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/journal"+tt.query, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK && tt.wantLen > 0 {
				var got []event.Record
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Len(t, got, tt.wantLen)
			}
		})
	}
}
