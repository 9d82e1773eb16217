package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"cv-builder/internal/adapter/repository"
	"cv-builder/internal/auth"
	"cv-builder/internal/editor"
	"cv-builder/internal/model"
	"cv-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("handler-secret")

type memStore struct {
	mu   sync.Mutex
	docs map[string]*model.Resume
}

func (s *memStore) Load(_ context.Context, userID string) (*model.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[userID]; ok {
		return d.Clone(), nil
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) Save(_ context.Context, userID string, doc *model.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[userID] = doc.Clone()
	return nil
}

type pngCapturer struct {
	w, h int
	err  error
}

func (p *pngCapturer) Capture(_ context.Context, _ string, _ float64) (*usecase.Bitmap, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &usecase.Bitmap{PNG: encodePNG(p.w, p.h), Width: p.w, Height: p.h}, nil
}

func encodePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

const cdnPrefix = "https://cdn.example/"

type memObjects struct {
	mu      sync.Mutex
	puts    int
	deleted []string
}

func (m *memObjects) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	return cdnPrefix + key, nil
}

func (m *memObjects) Key(uri string) (string, bool) {
	return strings.CutPrefix(uri, cdnPrefix)
}

func (m *memObjects) Delete(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, uri)
	return nil
}

func (m *memObjects) deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

type echoFormatter struct {
	calls int
	key   string
}

func (f *echoFormatter) Format(_ context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	f.calls++
	return map[string]interface{}{f.key: "generated text"}, nil
}

type testServer struct {
	app      *fiber.App
	svc      *auth.Service
	capturer *pngCapturer
	objects  *memObjects
	draft    *echoFormatter
	ats      *echoFormatter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	svc := auth.NewService(auth.NewHMACVerifier(testSecret, "", ""), auth.NewMemoryRegistry(), auth.NewState(), nil)
	mgr := editor.NewManager(&memStore{docs: map[string]*model.Resume{}}, editor.Options{Debounce: time.Hour}, nil, nil)
	mgr.Watch(svc.State())

	ts := &testServer{
		svc:      svc,
		capturer: &pngCapturer{w: 200, h: 250},
		objects:  &memObjects{},
		draft:    &echoFormatter{key: "cvDraft"},
		ats:      &echoFormatter{key: "optimizedCvContent"},
	}
	h := NewHandler(Deps{
		Editor:    mgr,
		Exporter:  usecase.NewExporter(ts.capturer, nil, nil, nil, 2),
		Photos:    usecase.NewPhotoService(ts.objects, usecase.PhotoOptions{}, nil, nil),
		Assistant: usecase.NewAssistant(ts.draft, ts.ats, nil, nil),
		Auth:      svc,
	})
	ts.app = NewApp(h, AppConfig{})
	return ts
}

// signIn returns a session cookie for userID.
func (ts *testServer) signIn(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        userID + "-session",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"token": tok})
	resp := ts.do(t, httptest.NewRequest(http.MethodPost, "/auth/session", bytes.NewReader(body)), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign in: expected 200, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "cv_session" {
			return c
		}
	}
	t.Fatalf("sign in: no session cookie")
	return nil
}

func (ts *testServer) do(t *testing.T, req *http.Request, cookie *http.Cookie) *http.Response {
	t.Helper()
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := ts.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	return resp
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	if resp := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for api, got %d", resp.StatusCode)
	}
	resp := ts.do(t, httptest.NewRequest(http.MethodGet, "/editor?template=ats", nil), nil)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login?next=%2Feditor%3Ftemplate%3Dats" {
		t.Fatalf("expected redirect to login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if resp := ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected healthz to be public, got %d", resp.StatusCode)
	}
}

func TestGetCVStartsFromPlaceholder(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cookie := ts.signIn(t, "u1")

	var got cvResponse
	decode(t, ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), cookie), &got)
	if got.Document.PersonalInfo.Name != "John Doe" || got.Template != "standard" || got.Pending {
		t.Fatalf("unexpected initial state %+v", got)
	}
}

func TestSetFieldReportsButKeepsInvalidValue(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cookie := ts.signIn(t, "u1")

	req := httptest.NewRequest(http.MethodPatch, "/api/cv/fields", jsonBody(t, fieldReq{Path: "personalInfo.email", Value: "nope"}))
	resp := ts.do(t, req, cookie)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var body struct {
		Fields []struct{ Path, Message string } `json:"fields"`
	}
	decode(t, resp, &body)
	if len(body.Fields) != 1 || body.Fields[0].Message != "Invalid email" {
		t.Fatalf("unexpected fields %+v", body.Fields)
	}

	var got cvResponse
	decode(t, ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), cookie), &got)
	if got.Document.PersonalInfo.Email != "nope" || !got.Pending {
		t.Fatalf("expected draft value stored and save pending, got %+v", got)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/cv/fields", jsonBody(t, fieldReq{Path: "hobbies[0].name", Value: "x"}))
	if resp := ts.do(t, req, cookie); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown path, got %d", resp.StatusCode)
	}
}

func TestAppendAndRemoveEntries(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cookie := ts.signIn(t, "u1")

	resp := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/cv/education", nil), cookie)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created struct{ ID string }
	decode(t, resp, &created)
	if created.ID == "" {
		t.Fatalf("expected new id")
	}

	if resp := ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/cv/education/0", nil), cookie); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	var got cvResponse
	decode(t, ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), cookie), &got)
	if len(got.Document.Education) != 1 || got.Document.Education[0].ID != created.ID {
		t.Fatalf("expected only the new entry to remain, got %+v", got.Document.Education)
	}

	if resp := ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/cv/education/7", nil), cookie); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range index, got %d", resp.StatusCode)
	}
}

func TestPreviewSwitchesActiveTemplate(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cookie := ts.signIn(t, "u1")

	if resp := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv/preview?template=fancy", nil), cookie); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown template, got %d", resp.StatusCode)
	}
	resp := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv/preview?template=canadian", nil), cookie)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("expected html preview, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "PROFESSIONAL EXPERIENCE") {
		t.Fatalf("expected canadian headers in preview")
	}

	var got cvResponse
	decode(t, ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), cookie), &got)
	if got.Template != "canadian" {
		t.Fatalf("expected canadian to be active, got %s", got.Template)
	}
}

func TestExportReturnsNamedPDF(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cookie := ts.signIn(t, "u1")

	resp := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/cv/export?template=ats", nil), cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "John_Doe_ats.pdf") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if resp.Header.Get(HeaderExportWarning) != "" {
		t.Fatalf("expected no warning for fitting content")
	}
	b, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("expected PDF bytes")
	}
}

func TestExportOverflowSetsWarningHeader(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.capturer.h = 600
	cookie := ts.signIn(t, "u1")

	resp := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/cv/export", nil), cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(HeaderExportWarning) != usecase.OverflowWarning {
		t.Fatalf("expected overflow warning, got %q", resp.Header.Get(HeaderExportWarning))
	}
}

func TestExportCaptureFailureIs500(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.capturer.err = errors.New("image failed to load")
	cookie := ts.signIn(t, "u1")

	resp := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/cv/export", nil), cookie)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["stage"] != usecase.StageCapture {
		t.Fatalf("expected capture stage, got %v", body)
	}
}

func multipartPhoto(t *testing.T, data []byte, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="photo"; filename="me.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/cv/photo", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestPhotoUpload(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cookie := ts.signIn(t, "u1")

	big := append(encodePNG(4, 4), make([]byte, usecase.MaxPhotoBytes)...)
	if resp := ts.do(t, multipartPhoto(t, big, "image/png"), cookie); resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, multipartPhoto(t, []byte("GIF89a......"), "image/gif"), cookie); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for gif, got %d", resp.StatusCode)
	}
	if ts.objects.puts != 0 {
		t.Fatalf("expected rejected uploads not to reach storage")
	}

	resp := ts.do(t, multipartPhoto(t, encodePNG(4, 4), "image/png"), cookie)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var up struct{ URL string }
	decode(t, resp, &up)

	var got cvResponse
	decode(t, ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), cookie), &got)
	if got.Document.PersonalInfo.PhotoURL != up.URL {
		t.Fatalf("expected photo url %q on document, got %q", up.URL, got.Document.PersonalInfo.PhotoURL)
	}

	if resp := ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/cv/photo", nil), cookie); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	decode(t, ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), cookie), &got)
	if got.Document.PersonalInfo.PhotoURL != "" {
		t.Fatalf("expected photo cleared")
	}
	if del := ts.objects.deletes(); len(del) != 1 || del[0] != up.URL {
		t.Fatalf("expected own photo deleted, got %v", del)
	}
}

func TestPhotoOfAnotherUserCannotBeDeleted(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	victim := ts.signIn(t, "u2")
	attacker := ts.signIn(t, "u1")

	resp := ts.do(t, multipartPhoto(t, encodePNG(4, 4), "image/png"), victim)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var up struct{ URL string }
	decode(t, resp, &up)

	req := httptest.NewRequest(http.MethodPatch, "/api/cv/fields", jsonBody(t, fieldReq{Path: "personalInfo.photoUrl", Value: up.URL}))
	if resp := ts.do(t, req, attacker); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected photo field to be read-only, got %d", resp.StatusCode)
	}

	var cur cvResponse
	decode(t, ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), attacker), &cur)
	cur.Document.PersonalInfo.PhotoURL = up.URL
	resp = ts.do(t, httptest.NewRequest(http.MethodPut, "/api/cv", jsonBody(t, cur.Document)), attacker)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected replace to succeed, got %d", resp.StatusCode)
	}
	var replaced cvResponse
	decode(t, resp, &replaced)
	if replaced.Document.PersonalInfo.PhotoURL != "" {
		t.Fatalf("expected replace to keep the attacker's own photo field, got %q", replaced.Document.PersonalInfo.PhotoURL)
	}

	if resp := ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/cv/photo", nil), attacker); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if del := ts.objects.deletes(); len(del) != 0 {
		t.Fatalf("expected no object deletes, got %v", del)
	}
}

func TestAIEndpoints(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cookie := ts.signIn(t, "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/ai/ats", jsonBody(t, atsReq{CVContent: "short", JobDescription: strings.Repeat("j", 60)}))
	if resp := ts.do(t, req, cookie); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for short cv, got %d", resp.StatusCode)
	}
	if ts.ats.calls != 0 {
		t.Fatalf("expected no model call for rejected input")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/ai/draft?apply=summary", jsonBody(t, draftReq{Prompt: "data engineer"}))
	resp := ts.do(t, req, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got cvResponse
	decode(t, ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), cookie), &got)
	if got.Document.Summary != "generated text" {
		t.Fatalf("expected draft applied to summary, got %q", got.Document.Summary)
	}
}

func TestSignOutClosesEditorSession(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cookie := ts.signIn(t, "u1")

	req := httptest.NewRequest(http.MethodPatch, "/api/cv/fields", jsonBody(t, fieldReq{Path: "summary", Value: "kept"}))
	if resp := ts.do(t, req, cookie); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, httptest.NewRequest(http.MethodPost, "/auth/logout", nil), cookie); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/cv", nil), cookie); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected revoked cookie to be rejected, got %d", resp.StatusCode)
	}
}
