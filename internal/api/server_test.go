package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/largefullmoon/backend-book-recommendation/internal/config"
	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/notify"
	"github.com/largefullmoon/backend-book-recommendation/internal/recommend"
	"github.com/largefullmoon/backend-book-recommendation/internal/search"
	"github.com/largefullmoon/backend-book-recommendation/internal/service"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
	"github.com/largefullmoon/backend-book-recommendation/internal/validation"
)

// stubLLM returns a canned completion and records the prompts it saw.
type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Complete(_ context.Context, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

const stubCompletion = `[
  {"name": "Dog Man", "likely_score": 9, "books": ["Dog Man", "Dog Man Unleashed"], "rationale": "funny graphic novels"},
  {"name": "The Wild Robot", "likely_score": 8, "books": ["The Wild Robot"], "rationale": "gentle adventure"}
]`

func newTestServer(t *testing.T, llmClient *stubLLM) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.EnsureAgeGroups(context.Background()))

	idx, err := search.NewIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	st.SetSearchIndexer(idx)

	v := validation.New()
	planner := recommend.NewService(st, llmClient, config.RecommendConfig{MinCandidates: 15}, logger)

	return NewServer(
		st,
		service.NewBookService(st, idx, v, logger),
		service.NewAgeGroupService(st, logger),
		service.NewQuizService(st, v, logger),
		service.NewAccountService(st, logger),
		planner,
		notify.NewEmailClient(config.SendGridConfig{}, logger),
		notify.NewWhatsAppClient(config.WhatsAppConfig{}, logger),
		logger,
	)
}

func doJSON(t *testing.T, srv *Server, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestBookEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodPost, "/books",
		`{"title":"Dog Man","author":"Dav Pilkey","genres":["Humor"],"ageRange":{"min":6,"max":10}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	require.Equal(t, true, created["success"])
	bookID := created["data"].(map[string]any)["id"].(string)
	require.NotEmpty(t, bookID)

	rec = doJSON(t, srv, http.MethodGet, "/books", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"], 1)

	// Missing title fails validation before touching the store.
	rec = doJSON(t, srv, http.MethodPost, "/books",
		`{"author":"Nobody","genres":["X"],"ageRange":{"min":1,"max":2}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/books/"+bookID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/books/"+bookID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodPost, "/books",
		`{"title":"The Wild Robot","author":"Peter Brown","genres":["Adventure"],"ageRange":{"min":8,"max":12}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/books/search?q=robot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody(t, rec)["data"].(map[string]any)
	assert.EqualValues(t, 1, result["total"])

	rec = doJSON(t, srv, http.MethodGet, "/books/search?q=robot&age=-3", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportBooksEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "books.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part,
		"Title,Vendor,Type,Tags,Image Src,Genre (product.metafields.shopify.genre)\n"+
			"Dog Man,Dav Pilkey,emerging-readers,,,Humor\n")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import-books", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody(t, rec)["data"].(map[string]any)
	assert.EqualValues(t, 1, report["success_count"])
}

func TestAgeGroupEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodPost, "/books",
		`{"title":"Dog Man","author":"Dav Pilkey","genres":["Humor"],"ageRange":{"min":6,"max":10}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	bookID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doJSON(t, srv, http.MethodPut, "/recommendations/8-10", `[{"id":"`+bookID+`"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	var books []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Dog Man", books[0]["title"])

	rec = doJSON(t, srv, http.MethodGet, "/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody(t, rec)
	assert.Len(t, all["8-10"], 1)
	assert.Empty(t, all["4-7"])

	rec = doJSON(t, srv, http.MethodGet, "/recommendations/5-9", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuizFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodPost, "/quiz/parent-consent",
		`{"email":"parent@example.com","phone":"+1 555 123 4567"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	consent := decodeBody(t, rec)
	require.Equal(t, true, consent["success"])
	readerID := consent["userId"].(string)
	require.NotEmpty(t, readerID)

	rec = doJSON(t, srv, http.MethodPut, "/quiz/users/"+readerID+"/basic-info",
		`{"name":"Maya","age":9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Maya", user["name"])
	progress := user["quizProgress"].(map[string]any)
	assert.Equal(t, true, progress["basicInfo"])
	assert.Equal(t, false, progress["completed"])

	rec = doJSON(t, srv, http.MethodPut, "/quiz/users/"+readerID+"/genres",
		`{"selectedGenres":["Humor","Adventure"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/quiz/users/"+readerID+"/book-series/response",
		`{"seriesId":"dog-man","hasRead":true,"response":"love"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/quiz/complete", `{"userId":"`+readerID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "completed", completed["status"])

	rec = doJSON(t, srv, http.MethodGet, "/quiz/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["users"], 1)

	// Unknown reader is a 404.
	rec = doJSON(t, srv, http.MethodGet, "/quiz/users/reader-nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeneratePlanValidation(t *testing.T) {
	srv := newTestServer(t, &stubLLM{response: stubCompletion})

	rec := doJSON(t, srv, http.MethodPost, "/recommendation-plan", `{"name":"Maya"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "Missing required fields")

	rec = doJSON(t, srv, http.MethodPost, "/recommendation-plan",
		`{"name":"Maya","age":9,"selectedGenres":[],"selectedInterests":[],"nonFictionInterests":[],"bookSeries":[],"parentEmail":"p@example.com","parentPhone":"5551234567"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "non-empty list")
}

func TestGeneratePlanFullPipeline(t *testing.T) {
	stub := &stubLLM{response: stubCompletion}
	srv := newTestServer(t, stub)

	rec := doJSON(t, srv, http.MethodPost, "/books",
		`{"title":"Dog Man","author":"Dav Pilkey","genres":["Humor"],"ageRange":{"min":6,"max":10}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/recommendation-plan",
		`{"name":"Maya","age":9,"selectedGenres":["Humor"],"selectedInterests":["animals"],"nonFictionInterests":[],"bookSeries":[],"parentEmail":"p@example.com","parentPhone":"5551234567"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan domain.ReadingPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Empty(t, plan.Error)
	assert.NotEmpty(t, plan.PlanID)
	assert.NotEmpty(t, plan.Current)
	require.Len(t, plan.Future, 3)
	for _, month := range plan.Future {
		assert.Len(t, month.Books, 4)
	}
	assert.Equal(t, 1, stub.calls)
}

func TestGeneratePlanEmptyCatalog(t *testing.T) {
	stub := &stubLLM{response: stubCompletion}
	srv := newTestServer(t, stub)

	rec := doJSON(t, srv, http.MethodPost, "/recommendation-plan",
		`{"name":"Maya","age":9,"selectedGenres":["Humor"],"selectedInterests":[],"nonFictionInterests":[],"bookSeries":[],"parentEmail":"p@example.com","parentPhone":"5551234567"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan domain.ReadingPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "No books found in database", plan.Error)
	assert.Empty(t, plan.Current)
	assert.Len(t, plan.Future, 3)
	assert.Zero(t, stub.calls, "empty catalog must not burn a model call")
}

func TestGeneratePlanRateLimit(t *testing.T) {
	srv := newTestServer(t, &stubLLM{response: stubCompletion})

	body := `{"name":"Maya","age":9,"selectedGenres":["Humor"],"selectedInterests":[],"nonFictionInterests":[],"bookSeries":[],"parentEmail":"p@example.com","parentPhone":"5551234567"}`
	var last int
	for i := 0; i < 6; i++ {
		last = doJSON(t, srv, http.MethodPost, "/recommendation-plan", body).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last, "burst of 5 exhausted on the 6th call")
}

func TestUserManagementEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	// Required fields enforced before anything is stored.
	rec := doJSON(t, srv, http.MethodPost, "/users", `{"name":"Jordan","email":"j@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", decodeBody(t, rec)["error"])

	rec = doJSON(t, srv, http.MethodPost, "/users",
		`{"name":"Jordan","email":"j@example.com","phone":"5551234567","childName":"Maya","childAge":9}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	userID := created["id"].(string)
	require.NotEmpty(t, userID)
	assert.Equal(t, "Jordan", created["name"])
	assert.NotNil(t, created["recommendations"])

	rec = doJSON(t, srv, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)

	// Partial update leaves unmentioned fields alone.
	rec = doJSON(t, srv, http.MethodPut, "/users/"+userID, `{"phone":"5559876543"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody(t, rec)
	assert.Equal(t, "5559876543", updated["phone"])
	assert.Equal(t, "Jordan", updated["name"])

	rec = doJSON(t, srv, http.MethodGet, "/users/account-nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeBody(t, rec)["error"])

	rec = doJSON(t, srv, http.MethodDelete, "/users/"+userID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted successfully", decodeBody(t, rec)["message"])

	rec = doJSON(t, srv, http.MethodDelete, "/users/"+userID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserProfileEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodPost, "/user-profile",
		`{"age":9,"genres":["Humor"],"liked_books":["Dog Man"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User profile created successfully", body["message"])
	require.NotEmpty(t, body["user_id"])

	rec = doJSON(t, srv, http.MethodGet, "/users/"+body["user_id"].(string), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 9, decodeBody(t, rec)["age"])
}

func TestUserRecommendationCuration(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodPost, "/books",
		`{"title":"Dog Man","author":"Dav Pilkey","genres":["Humor"],"ageRange":{"min":6,"max":10}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	bookID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doJSON(t, srv, http.MethodPost, "/users",
		`{"name":"Jordan","email":"j@example.com","phone":"5551234567","childName":"Maya","childAge":9}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	userID := decodeBody(t, rec)["id"].(string)

	rec = doJSON(t, srv, http.MethodPost, "/users/"+userID+"/recommendations", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Book ID is required", decodeBody(t, rec)["error"])

	rec = doJSON(t, srv, http.MethodPost, "/users/"+userID+"/recommendations", `{"book_id":"book-nope"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", decodeBody(t, rec)["error"])

	rec = doJSON(t, srv, http.MethodPost, "/users/"+userID+"/recommendations", `{"book_id":"`+bookID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["recommendations"], 1)

	// Re-adding the same book changes nothing and reports it.
	rec = doJSON(t, srv, http.MethodPost, "/users/"+userID+"/recommendations", `{"book_id":"`+bookID+`"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found or book already recommended", decodeBody(t, rec)["error"])

	rec = doJSON(t, srv, http.MethodDelete, "/users/"+userID+"/recommendations/"+bookID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["recommendations"])

	rec = doJSON(t, srv, http.MethodDelete, "/users/"+userID+"/recommendations/"+bookID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found or book not in recommendations", decodeBody(t, rec)["error"])
}

func TestPlanAdminEndpoints(t *testing.T) {
	stub := &stubLLM{response: stubCompletion}
	srv := newTestServer(t, stub)

	rec := doJSON(t, srv, http.MethodPost, "/books",
		`{"title":"Dog Man","author":"Dav Pilkey","genres":["Humor"],"ageRange":{"min":6,"max":10}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := `{"name":"Maya","age":9,"selectedGenres":["Humor"],"selectedInterests":[],"nonFictionInterests":[],"bookSeries":[],"parentEmail":"p@example.com","parentPhone":"5551234567"}`
	rec = doJSON(t, srv, http.MethodPost, "/recommendation-plan", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var plan domain.ReadingPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.NotEmpty(t, plan.PlanID)

	rec = doJSON(t, srv, http.MethodGet, "/recommendation-plans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"], 1)

	rec = doJSON(t, srv, http.MethodDelete, "/recommendation-plans/"+plan.PlanID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/recommendation-plans/"+plan.PlanID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Bulk delete reports how many plans it removed.
	rec = doJSON(t, srv, http.MethodPost, "/recommendation-plan", body)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodDelete, "/recommendation-plans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["data"].(map[string]any)["deleted"])

	rec = doJSON(t, srv, http.MethodGet, "/recommendation-plans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["data"])
}

func TestSendEmailValidation(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodPost, "/send-recommendations/email",
		`{"email":"parent@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", decodeBody(t, rec)["error"])
}

func TestWhatsAppNotConfigured(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	rec := doJSON(t, srv, http.MethodPost, "/send-recommendations/whatsapp",
		`{"phone":"5551234567","name":"Maya","recommendations":[],"current":[],"future":[]}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "not configured")

	rec = doJSON(t, srv, http.MethodPost, "/test-whatsapp", `{"phone":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
