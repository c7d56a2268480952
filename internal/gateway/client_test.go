package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nexus/campusmap/internal/model"
	"github.com/nexus/campusmap/internal/testutil"
)

func newTestClient(t *testing.T, r chi.Router) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		BaseURL: srv.URL,
		Logger:  testutil.TestLoggerSilent(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["email"] != "alice@campus.ac.kr" || body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-123",
			"user":  map[string]any{"id": 7, "name": "alice", "role": "STAFF"},
		})
	})
	r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer tok-123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no token"})
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	})

	c, _ := newTestClient(t, r)

	user, token, err := c.Login(context.Background(), "alice@campus.ac.kr", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok-123" || user.Name != "alice" || user.Role != model.RoleStaff {
		t.Errorf("unexpected login result: %+v, %q", user, token)
	}

	// Token is stored and attached to subsequent requests.
	if _, err := c.ListEvents(context.Background()); err != nil {
		t.Fatalf("ListEvents with token: %v", err)
	}

	c.ClearToken()
	_, err = c.ListEvents(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ListEvents without token error = %v, want ErrUnauthorized", err)
	}
}

func TestLoginRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad credentials"})
	})
	c, _ := newTestClient(t, r)

	_, _, err := c.Login(context.Background(), "x", "y")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "bad credentials" {
		t.Errorf("status error = %+v", se)
	}
}

func TestCreateEventMultipart(t *testing.T) {
	var gotTitle, gotLat, gotStarts, gotFilename, gotImageType string
	var gotImage []byte

	r := chi.NewRouter()
	r.Post("/events", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		gotTitle = req.FormValue("title")
		gotLat = req.FormValue("lat")
		gotStarts = req.FormValue("startsAt")

		file, header, err := req.FormFile("image")
		if err == nil {
			gotFilename = header.Filename
			gotImageType = header.Header.Get("Content-Type")
			buf := make([]byte, header.Size)
			n, _ := file.Read(buf)
			gotImage = buf[:n]
			_ = file.Close()
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"eventId":        41,
			"imageUrl":       "/uploads/41.jpg",
			"approvalStatus": "PENDING",
		})
	})

	c, _ := newTestClient(t, r)

	starts := time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
	result, err := c.CreateEvent(context.Background(), EventDraft{
		Title:    "Food Night",
		Lat:      36.6331,
		Lon:      127.4544,
		StartsAt: &starts,
		Image: &Upload{
			Filename:    "food-night-abc123.jpg",
			ContentType: "image/jpeg",
			Data:        []byte("jpegbytes"),
		},
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if result.EventID != 41 || result.ApprovalStatus != model.ApprovalPending {
		t.Errorf("unexpected result %+v", result)
	}

	if gotTitle != "Food Night" {
		t.Errorf("title = %q", gotTitle)
	}
	if gotLat != "36.6331" {
		t.Errorf("lat = %q", gotLat)
	}
	if gotStarts != "2026-04-10T18:00" {
		t.Errorf("startsAt = %q, want minute-precision form layout", gotStarts)
	}
	if gotFilename != "food-night-abc123.jpg" || gotImageType != "image/jpeg" {
		t.Errorf("image part = %q (%q)", gotFilename, gotImageType)
	}
	if string(gotImage) != "jpegbytes" {
		t.Errorf("image data = %q", gotImage)
	}
}

func TestListCommentsSetsEventID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/events/{id}/comments", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "content": "hi", "userName": "bob", "isMine": false},
		})
	})
	c, _ := newTestClient(t, r)

	comments, err := c.ListComments(context.Background(), 17)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 1 || comments[0].EventID != 17 {
		t.Errorf("comments = %+v, want EventID backfilled", comments)
	}
}

func TestLikeReturnsAuthoritativeCount(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/events/{id}/like", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"likes": 12})
	})
	c, _ := newTestClient(t, r)

	likes, err := c.Like(context.Background(), 5)
	if err != nil {
		t.Fatalf("Like: %v", err)
	}
	if likes != 12 {
		t.Errorf("likes = %d, want 12", likes)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusConflict, ErrValidation},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusBadGateway, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
				writeJSON(w, tt.status, map[string]string{"error": "nope"})
			})
			c, _ := newTestClient(t, r)

			_, err := c.ListEvents(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d error = %v, want %v", tt.status, err, tt.want)
			}
		})
	}
}

func TestNetworkFailureIsUnavailable(t *testing.T) {
	c, err := New(Options{
		BaseURL: "http://127.0.0.1:0",
		Logger:  testutil.TestLoggerSilent(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.ListEvents(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestPendingAndApprove(t *testing.T) {
	approved := false
	r := chi.NewRouter()
	r.Get("/admin/events/pending", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 9, "title": "Waiting", "approvalStatus": "PENDING"},
		})
	})
	r.Put("/admin/events/{id}/approve", func(w http.ResponseWriter, req *http.Request) {
		approved = chi.URLParam(req, "id") == "9"
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, r)

	pending, err := c.PendingEvents(context.Background())
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	if len(pending) != 1 || pending[0].ApprovalStatus != model.ApprovalPending {
		t.Errorf("pending = %+v", pending)
	}

	if err := c.ApproveEvent(context.Background(), 9); err != nil {
		t.Fatalf("ApproveEvent: %v", err)
	}
	if !approved {
		t.Error("approve route not hit")
	}
}

func TestUserAdministrationRoutes(t *testing.T) {
	var gotRole struct {
		Role string `json:"role"`
	}
	var roleUser string
	r := chi.NewRouter()
	r.Get("/admin/users", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "root", "role": "ADMIN"},
			{"id": 2, "name": "bob", "role": "USER"},
		})
	})
	r.Put("/admin/users/{id}/role", func(w http.ResponseWriter, req *http.Request) {
		roleUser = chi.URLParam(req, "id")
		if err := json.NewDecoder(req.Body).Decode(&gotRole); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	c, _ := newTestClient(t, r)

	users, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[1].Role != model.RoleUser {
		t.Errorf("users = %+v", users)
	}

	if err := c.SetUserRole(context.Background(), 2, model.RoleStaff); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	if roleUser != "2" || gotRole.Role != "STAFF" {
		t.Errorf("role route got user %q role %q", roleUser, gotRole.Role)
	}
}

func TestTranslate(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/translate", func(w http.ResponseWriter, req *http.Request) {
		var body TranslateRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.TargetLang != "en" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported language"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"translatedTitle":       "Festival",
			"translatedDescription": "Annual spring festival",
		})
	})
	c, _ := newTestClient(t, r)

	result, err := c.Translate(context.Background(), TranslateRequest{
		Title:      "축제",
		TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if result.TranslatedTitle != "Festival" {
		t.Errorf("result = %+v", result)
	}
}
