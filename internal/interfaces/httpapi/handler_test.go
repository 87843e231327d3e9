package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-analysis/internal/domain/user"
	"github.com/riskibarqy/match-analysis/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/match-analysis/internal/platform/id"
	"github.com/riskibarqy/match-analysis/internal/platform/logging"
	"github.com/riskibarqy/match-analysis/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJobToken = "job-secret"

// stubVerifier accepts tokens of the form "token-<uid>".
type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, token string) (user.Principal, error) {
	uid, ok := strings.CutPrefix(token, "token-")
	if !ok || uid == "" {
		return user.Principal{}, fmt.Errorf("%w: invalid token", usecase.ErrUnauthorized)
	}
	return user.Principal{UID: uid, Email: uid + "@example.com"}, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type recordingUploader struct {
	mu   sync.Mutex
	keys []string
}

func (u *recordingUploader) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.keys = append(u.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func (u *recordingUploader) Delete(context.Context, string) error { return nil }

type routerFixture struct {
	store    *memory.Store
	uploader *recordingUploader
	router   http.Handler
}

func newRouterFixture(t *testing.T, health HealthChecker) *routerFixture {
	t.Helper()

	store := memory.NewStore()
	ids := id.NewUUIDGenerator()
	uploader := &recordingUploader{}
	if health == nil {
		health = pingFunc(func(context.Context) error { return nil })
	}

	handler := NewHandler(
		usecase.NewMatchService(store.Users(), store.Matches(), store, ids, uploader,
			usecase.MatchListLimits{DefaultLimit: 20, MaxLimit: 100}, nil),
		usecase.NewUserService(store.Users()),
		usecase.NewClubService(store.Clubs(), ids),
		usecase.NewPlayerProfileService(store.PlayerProfiles()),
		health,
		logging.NewNop(),
	)

	return &routerFixture{
		store:    store,
		uploader: uploader,
		router: NewRouter(handler, stubVerifier{}, logging.NewNop(), RouterOptions{
			SwaggerEnabled:   true,
			InternalJobToken: testJobToken,
			RequestTimeout:   5 * time.Second,
		}),
	}
}

func (f *routerFixture) do(t *testing.T, method, path, uid, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set("Authorization", "Bearer token-"+uid)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func (f *routerFixture) register(t *testing.T, uid string) {
	t.Helper()

	body := fmt.Sprintf(`{"name":"%s","email":"%s@example.com","UID":"%s"}`, uid, uid, uid)
	rec, _ := f.do(t, http.MethodPost, "/user/register", uid, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (f *routerFixture) createMatch(t *testing.T, uid string) string {
	t.Helper()

	rec, body := f.do(t, http.MethodPost, "/match", uid, ajaxFeyenoordBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	matchID, _ := body["matchId"].(string)
	require.NotEmpty(t, matchID)
	return matchID
}

const ajaxFeyenoordBody = `{
  "videoUrl": "https://video.example.com/ajax-feyenoord.mp4",
  "competitiveLevel": "professional",
  "clubs": [
    {"name": "Ajax", "country": "NL", "jerseyColor": "white", "teamType": "yourTeam"},
    {"name": "Feyenoord", "country": "NL", "jerseyColor": "red", "teamType": "opponentTeam"}
  ],
  "players": [
    {"firstName": "Jordan", "lastName": "Henderson", "jerseyNumber": 6, "dateOfBirth": "17-06-1990", "position": "CM", "country": "England", "teamType": "yourTeam"},
    {"firstName": "Brian", "lastName": "Brobbey", "jerseyNumber": 9, "dateOfBirth": "01-02-2002", "position": "ST", "country": "NL", "teamType": "yourTeam"},
    {"jerseyNumber": 1, "position": "GK", "teamType": "opponentTeam"}
  ]
}`

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "expected data object, got %v", body["data"])
	return data
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	data, ok := body["data"].([]any)
	require.True(t, ok, "expected data array, got %v", body["data"])
	return data
}

func errorPaths(body map[string]any) []string {
	items, _ := body["errors"].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			path, _ := m["path"].(string)
			out = append(out, path)
		}
	}
	return out
}

func TestRouter_RejectsMissingOrBadToken(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, _ := f.do(t, http.MethodGet, "/match", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/match", nil)
	req.Header.Set("Authorization", "Basic abc")
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestRegisterUser(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, body := f.do(t, http.MethodPost, "/user/register", "uid-1", `{"name":"Ana","email":"Ana@Example.com","UID":"uid-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ana@example.com", dataMap(t, body)["email"])

	rec, _ = f.do(t, http.MethodPost, "/user/register", "uid-1", `{"name":"Ana","email":"ana@example.com","UID":"uid-1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/user/register", "uid-2", `{"name":"Bo","email":"bo@example.com","UID":"uid-3"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = f.do(t, http.MethodPost, "/user/register", "uid-2", `{"name":"Bo","email":"not-an-email","UID":"uid-2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorPaths(body), "email")

	rec, body = f.do(t, http.MethodGet, "/user/me", "uid-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid-1", dataMap(t, body)["uid"])

	rec, _ = f.do(t, http.MethodGet, "/user/me", "uid-9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateMatch_RequiresRegisteredUser(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, _ := f.do(t, http.MethodPost, "/match", "uid-ghost", ajaxFeyenoordBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/club", "uid-ghost", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dataList(t, body))
}

func TestCreateMatch_ValidationErrors(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "uid-1")

	rec, body := f.do(t, http.MethodPost, "/match", "uid-1", `{
	  "clubs": [
	    {"name": "Ajax", "country": "NL", "teamType": "yourTeam"},
	    {"name": "Feyenoord", "country": "NL", "teamType": "awayTeam"}
	  ]
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", body["message"])
	assert.ElementsMatch(t, []string{"videoUrl", "clubs[1].teamType"}, errorPaths(body))

	rec, _ = f.do(t, http.MethodPost, "/match", "uid-1", `{"videoUrl":"https://v.example.com/a.mp4","unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = f.do(t, http.MethodPost, "/match", "uid-1", `{
	  "videoUrl": "https://video.example.com/a.mp4",
	  "clubs": [
	    {"name": "Ajax", "country": "NL", "teamType": "yourTeam"},
	    {"name": "PSV", "country": "NL", "teamType": "yourTeam"}
	  ]
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorPaths(body), "clubs[1].teamType")
}

func TestMatchLifecycle(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "uid-1")
	matchID := f.createMatch(t, "uid-1")

	rec, body := f.do(t, http.MethodGet, "/match", "uid-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := dataList(t, body)
	require.Len(t, items, 1)
	summary := items[0].(map[string]any)
	assert.Equal(t, matchID, summary["id"])
	assert.Equal(t, "PENDING", summary["status"])
	assert.NotEmpty(t, summary["createdAt"])

	rec, body = f.do(t, http.MethodGet, "/match/"+matchID, "uid-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := dataMap(t, body)
	clubs := detail["clubs"].([]any)
	players := detail["players"].([]any)
	require.Len(t, clubs, 2)
	require.Len(t, players, 3)
	assert.Nil(t, detail["result"])

	clubByRole := map[string]string{}
	for _, c := range clubs {
		m := c.(map[string]any)
		clubByRole[m["teamType"].(string)] = m["id"].(string)
	}
	for _, p := range players {
		m := p.(map[string]any)
		if m["isUserTeam"] == true {
			assert.Equal(t, clubByRole["yourTeam"], m["matchClubId"])
			assert.NotEmpty(t, m["playerProfileId"])
		} else {
			assert.Equal(t, clubByRole["opponentTeam"], m["matchClubId"])
			assert.Equal(t, "01-01-1900", m["dateOfBirth"])
		}
	}

	rec, body = f.do(t, http.MethodPost, "/match/"+matchID, "uid-1", `{"status":"PROCESSING"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "match status updated to PROCESSING", body["message"])

	rec, body = f.do(t, http.MethodPost, "/match/"+matchID, "uid-1", `{"status":"BOGUS"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorPaths(body), "status")

	_, body = f.do(t, http.MethodGet, "/match/"+matchID, "uid-1", "")
	assert.Equal(t, "PROCESSING", dataMap(t, body)["status"])
}

func TestReportMatchStatus_RequiresJobToken(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "uid-1")
	matchID := f.createMatch(t, "uid-1")

	post := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/internal/match/"+matchID+"/status", strings.NewReader(`{"status":"COMPLETED"}`))
		if token != "" {
			req.Header.Set(internalJobTokenHeader, token)
		}
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, post(""))
	assert.Equal(t, http.StatusUnauthorized, post("wrong"))
	assert.Equal(t, http.StatusOK, post(testJobToken))

	_, body := f.do(t, http.MethodGet, "/match/"+matchID, "uid-1", "")
	assert.Equal(t, "COMPLETED", dataMap(t, body)["status"])
}

func TestGetMatchDetail_NotFound(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, body := f.do(t, http.MethodGet, "/match/6f1c2f1e-0000-4000-8000-000000000000", "uid-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", body["status"])

	rec, _ = f.do(t, http.MethodPost, "/match/6f1c2f1e-0000-4000-8000-000000000000", "uid-1", `{"status":"COMPLETED"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAllMatches_Pagination(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "uid-1")
	for range 3 {
		f.createMatch(t, "uid-1")
	}

	rec, body := f.do(t, http.MethodGet, "/match/all-match?page=1&limit=2", "uid-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, dataList(t, body), 2)
	assert.Equal(t, map[string]any{"page": float64(1), "limit": float64(2)}, body["pagination"])

	_, body = f.do(t, http.MethodGet, "/match/all-match?page=2&limit=2", "uid-1", "")
	assert.Len(t, dataList(t, body), 1)

	_, body = f.do(t, http.MethodGet, "/match/all-match?page=9", "uid-1", "")
	assert.Empty(t, dataList(t, body))

	rec, body = f.do(t, http.MethodGet, "/match/all-match?page=4611686018427387905&limit=2", "uid-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dataList(t, body))

	_, body = f.do(t, http.MethodGet, "/match/all-match?limit=500", "uid-1", "")
	assert.Equal(t, float64(100), body["pagination"].(map[string]any)["limit"])

	_, body = f.do(t, http.MethodGet, "/match/all-match", "uid-1", "")
	assert.Equal(t, map[string]any{"page": float64(1), "limit": float64(20)}, body["pagination"])

	for _, query := range []string{"page=abc", "limit=0", "page=-1"} {
		rec, _ = f.do(t, http.MethodGet, "/match/all-match?"+query, "uid-1", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func multipartImage(t *testing.T, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="lineup.png"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadLineupImage(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "uid-1")
	f.register(t, "uid-2")
	matchID := f.createMatch(t, "uid-1")

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	upload := func(uid, contentType string, payload []byte) *httptest.ResponseRecorder {
		body, formType := multipartImage(t, contentType, payload)
		req := httptest.NewRequest(http.MethodPut, "/match/"+matchID+"/lineup-image", body)
		req.Header.Set("Content-Type", formType)
		req.Header.Set("Authorization", "Bearer token-"+uid)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("uid-2", "image/png", png)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = upload("uid-1", "", []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload("uid-1", "", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, f.uploader.keys, 1)
	assert.True(t, strings.HasPrefix(f.uploader.keys[0], "matches/"+matchID+"/lineup-"))
	assert.True(t, strings.HasSuffix(f.uploader.keys[0], ".png"))

	_, body := f.do(t, http.MethodGet, "/match/"+matchID, "uid-1", "")
	assert.Equal(t, "https://cdn.example.com/"+f.uploader.keys[0], dataMap(t, body)["lineUpImage"])

	req := httptest.NewRequest(http.MethodPut, "/match/"+matchID+"/lineup-image", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-uid-1")
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestClubEndpoints(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, body := f.do(t, http.MethodPost, "/club", "uid-1", `{"name":"Ajax","country":"NL","logoUrl":"https://logo.example.com/ajax.png"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	clubID := dataMap(t, body)["id"].(string)

	rec, _ = f.do(t, http.MethodPost, "/club", "uid-1", `{"name":"Ajax","country":"NL"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = f.do(t, http.MethodPost, "/club", "uid-1", `{"name":"","country":"NL"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorPaths(body), "name")

	rec, body = f.do(t, http.MethodPut, "/club/"+clubID, "uid-1", `{"name":"AFC Ajax","country":"NL"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "AFC Ajax", dataMap(t, body)["name"])

	rec, body = f.do(t, http.MethodGet, "/club/"+clubID, "uid-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AFC Ajax", dataMap(t, body)["name"])

	rec, _ = f.do(t, http.MethodGet, "/club/does-not-exist", "uid-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodDelete, "/club/"+clubID, "uid-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodDelete, "/club/"+clubID, "uid-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClub_InUse(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "uid-1")
	f.createMatch(t, "uid-1")

	_, body := f.do(t, http.MethodGet, "/club", "uid-1", "")
	clubs := dataList(t, body)
	require.Len(t, clubs, 2)

	clubID := clubs[0].(map[string]any)["id"].(string)
	rec, _ := f.do(t, http.MethodDelete, "/club/"+clubID, "uid-1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPlayerProfileEndpoints(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "uid-1")
	f.createMatch(t, "uid-1")

	rec, body := f.do(t, http.MethodGet, "/player", "uid-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, dataList(t, body), 2)

	_, body = f.do(t, http.MethodGet, "/player/search?lastName=hender", "uid-1", "")
	found := dataList(t, body)
	require.Len(t, found, 1)
	profile := found[0].(map[string]any)
	assert.Equal(t, "17-06-1990", profile["dateOfBirth"])
	profileID := profile["id"].(string)

	_, body = f.do(t, http.MethodGet, "/player/search?dateOfBirth=01-02-2002", "uid-1", "")
	assert.Len(t, dataList(t, body), 1)

	_, body = f.do(t, http.MethodGet, "/player/search?dateOfBirth=garbage", "uid-1", "")
	assert.Len(t, dataList(t, body), 2)

	rec, body = f.do(t, http.MethodPut, "/player/"+profileID, "uid-1", `{"primaryPosition":"DM","dateOfBirth":"16-06-1990"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "DM", dataMap(t, body)["primaryPosition"])
	assert.Equal(t, "16-06-1990", dataMap(t, body)["dateOfBirth"])

	rec, _ = f.do(t, http.MethodPut, "/player/"+profileID, "uid-1", `{"dateOfBirth":"31-31-1990"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/player/missing", "uid-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t, nil)
	rec, body := f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])

	down := newRouterFixture(t, pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	rec, body = down.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "dependency unavailable", body["message"])
}

func TestSwaggerRoutes(t *testing.T) {
	f := newRouterFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/match/all-match")

	req = httptest.NewRequest(http.MethodGet, "/docs", nil)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Match Analysis API Docs")
}

func TestRecoverPanic(t *testing.T) {
	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
