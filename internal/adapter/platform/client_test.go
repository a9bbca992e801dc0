package platform

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "app-1", "secret", 5*time.Second, 0, testLogger())
	return c
}

func TestListFieldNotes(t *testing.T) {
	var gotPath, gotAuth, gotSort string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSort = r.URL.Query().Get("sort")
		json.NewEncoder(w).Encode([]domain.FieldNote{
			{ID: "fn-1", Title: "Creek survey"},
			{ID: "fn-2", Title: "Park walk"},
		})
	})

	notes, err := client.ListFieldNotes(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, "/apps/app-1/entities/FieldNote", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "-created_date", gotSort)
	require.Len(t, notes, 2)
	assert.Equal(t, "Creek survey", notes[0].Title)
}

func TestCreateObservation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/apps/app-1/entities/Observation", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var obs domain.Observation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&obs))
		obs.ID = "obs-9"
		json.NewEncoder(w).Encode(obs)
	})

	created, err := client.CreateObservation(context.Background(), domain.Observation{
		Title:     "Heron sighting",
		MediaType: domain.MediaImage,
		MediaURL:  "https://cdn.example.com/heron.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "obs-9", created.ID)
	assert.Equal(t, "Heron sighting", created.Title)
}

func TestListUnreadNotifications_Filter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		assert.JSONEq(t, `{"read": false}`, q)
		json.NewEncoder(w).Encode([]domain.Notification{{ID: "n-1"}})
	})

	ns, err := client.ListUnreadNotifications(context.Background())
	require.NoError(t, err)
	assert.Len(t, ns, 1)
}

func TestMarkNotificationRead(t *testing.T) {
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/apps/app-1/entities/Notification/n-1", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	})

	err := client.MarkNotificationRead(context.Background(), "n-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"read": true}`, gotBody)
}

func TestBulkCreateFieldNotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/app-1/entities/FieldNote/bulk", r.URL.Path)
		var notes []domain.FieldNote
		require.NoError(t, json.NewDecoder(r.Body).Decode(&notes))
		assert.Len(t, notes, 2)
	})

	err := client.BulkCreateFieldNotes(context.Background(), []domain.FieldNote{
		{Title: "a"}, {Title: "b"},
	})
	require.NoError(t, err)
}

func TestImpactRecords_CombinesNotesAndObservations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/FieldNote"):
			json.NewEncoder(w).Encode([]domain.FieldNote{
				{ID: "fn-1", ImpactCategories: []domain.CategoryTag{domain.CategoryAirQuality}},
			})
		case strings.HasSuffix(r.URL.Path, "/Observation"):
			json.NewEncoder(w).Encode([]domain.Observation{
				{ID: "obs-1", ImpactCategories: []domain.CategoryTag{domain.CategoryWaterQuality}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	records, err := client.ImpactRecords(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "fn-1", records[0].ID)
	assert.Equal(t, "obs-1", records[1].ID)
}

func TestMe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/app-1/users/me", r.URL.Path)
		json.NewEncoder(w).Encode(domain.User{ID: "u-1", Email: "kai@example.com"})
	})

	var user domain.User
	require.NoError(t, client.Me(context.Background(), &user))
	assert.Equal(t, "u-1", user.ID)
}

func TestLogout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/apps/app-1/auth/logout", r.URL.Path)
	})

	require.NoError(t, client.Logout(context.Background()))
}

func TestDoJSON_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such app", http.StatusNotFound)
	})

	_, err := client.ListFieldNotes(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestUploadFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/app-1/files", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "notes.csv", header.Filename)
		content, _ := io.ReadAll(f)
		assert.Equal(t, "title,date\n", string(content))

		json.NewEncoder(w).Encode(map[string]string{"file_url": "https://files.example.com/notes.csv"})
	})

	url, err := client.UploadFile(context.Background(), "notes.csv", strings.NewReader("title,date\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/notes.csv", url)
}

func TestExtractFromFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FileURL string         `json:"file_url"`
			Schema  map[string]any `json:"json_schema"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://files.example.com/notes.csv", body.FileURL)

		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"output": map[string]any{
				"entries": []map[string]any{{"title": "Creek survey"}},
			},
		})
	})

	var out struct {
		Entries []domain.FieldNoteDraft `json:"entries"`
	}
	err := client.ExtractFromFile(context.Background(), "https://files.example.com/notes.csv", map[string]any{"type": "object"}, &out)
	require.NoError(t, err)

	require.Len(t, out.Entries, 1)
	assert.Equal(t, "Creek survey", out.Entries[0].Title)
}

func TestExtractFromFile_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": "unreadable file"})
	})

	var out struct{}
	err := client.ExtractFromFile(context.Background(), "https://files.example.com/x", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable file")
}
