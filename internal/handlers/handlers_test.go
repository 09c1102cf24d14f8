package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskward-dev/taskward/db"
	"github.com/taskward-dev/taskward/internal/auth"
	"github.com/taskward-dev/taskward/internal/config"
	"github.com/taskward-dev/taskward/internal/models"
	"github.com/taskward-dev/taskward/internal/realtime"
	"github.com/taskward-dev/taskward/internal/router"
	"github.com/taskward-dev/taskward/internal/services"
	"github.com/taskward-dev/taskward/internal/store"
)

var testDBCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)

	if err := auth.InitJWT("test-secret-for-handlers", time.Hour); err != nil {
		panic(err)
	}
}

type testEnv struct {
	router *gin.Engine
	store  *store.Store
}

// newTestEnv wires the full router against a fresh in-memory database.
// The mailer has no SMTP host configured, so email sends are no-ops.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers%d?mode=memory&cache=shared", testDBCounter.Add(1))

	if err := db.ConnectDatabase("sqlite", dsn); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := config.DefaultConfig()
	st := store.New(db.DB)
	hub := realtime.NewHub()
	mailer := services.NewMailer(config.SMTPConfig{}, "http://localhost:3000")

	return &testEnv{
		router: router.NewRouter(cfg, st, hub, mailer),
		store:  st,
	}
}

// createUser registers a user directly in storage and returns a session
// token for request helpers.
func (e *testEnv) createUser(t *testing.T, name, email, password string, confirmed bool) (*models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Confirmed:    confirmed,
	}
	if err := e.store.CreateUser(user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	return user, token
}

func (e *testEnv) createProject(t *testing.T, creatorID uint, name string) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, CreatorID: creatorID}
	if err := e.store.CreateProject(project); err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return project
}

func (e *testEnv) createTask(t *testing.T, projectID uint, name string) *models.Task {
	t.Helper()

	task := &models.Task{Name: name, Priority: models.PriorityMedium, ProjectID: projectID}
	if err := e.store.CreateTask(task); err != nil {
		t.Fatalf("failed to create task %s: %v", name, err)
	}
	return task
}

func (e *testEnv) addCollaborator(t *testing.T, projectID, userID uint) {
	t.Helper()

	if err := e.store.AddCollaborator(projectID, userID); err != nil {
		t.Fatalf("AddCollaborator() error = %v", err)
	}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
	return body
}
