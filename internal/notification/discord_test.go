package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/moviedb/internal/domain"
)

func TestDiscordSendSuccess(t *testing.T) {
	var payload discordWebhook
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	svc := NewService(zerolog.Nop(), srv.URL)
	err := svc.SendSuccess(context.Background(), domain.Statistics{
		RunID:    "abc",
		Source:   "tmdb-popular",
		Pages:    3,
		Inserted: 55,
		Duration: 2 * time.Second,
		Totals:   domain.TableCounts{Movies: 55, Genres: 19, MovieGenres: 130},
	})
	require.NoError(t, err)

	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]
	assert.Equal(t, "moviedb import completed", embed.Title)
	assert.Contains(t, embed.Description, "tmdb-popular")

	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "3", values["Pages"])
	assert.Equal(t, "55 movies, 19 genres, 130 links", values["Totals"])
}

func TestDiscordSendError(t *testing.T) {
	var payload discordWebhook
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewDiscordService(zerolog.Nop(), srv.URL)
	require.NoError(t, svc.SendError(context.Background(), errors.New("database connection lost")))

	require.Len(t, payload.Embeds, 1)
	assert.Contains(t, payload.Embeds[0].Description, "database connection lost")
}

func TestDiscordBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	svc := NewDiscordService(zerolog.Nop(), srv.URL)
	assert.Error(t, svc.SendSuccess(context.Background(), domain.Statistics{}))
}

func TestNoWebhookConfigured(t *testing.T) {
	svc := NewService(zerolog.Nop(), "")

	assert.NoError(t, svc.SendSuccess(context.Background(), domain.Statistics{}))
	assert.NoError(t, svc.SendError(context.Background(), errors.New("boom")))
}
