//go:build !integration

package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/ports/repository"
	"parallel-muhit-webapp/internal/infra/adapters/backend"
	"parallel-muhit-webapp/internal/infra/i18n"
	"parallel-muhit-webapp/internal/infra/logging"
	"parallel-muhit-webapp/internal/infra/memory"
	"parallel-muhit-webapp/internal/infra/web/view"
	"parallel-muhit-webapp/internal/usecase"
)

const testSecret = "test-session-secret-please-change"

type testApp struct {
	srv     *httptest.Server
	client  *http.Client
	backend *backend.FakeBackend
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWithLocker(t, memory.NewKeyedLocker())
}

func newTestAppWithLocker(t *testing.T, locker repository.Locker) *testApp {
	t.Helper()
	be := backend.NewFakeBackend()
	uc := usecase.NewPageController(be, memory.NewSessionRepo(time.Hour), locker, logging.Nop())
	views, err := view.NewRenderer(i18n.MustDefault(), "https://t.me/support")
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	cookies := NewSessionCookies(testSecret, "", "", false, time.Hour)
	s := NewServer(uc, views, cookies, Options{MaxUploadBytes: 1 << 20}, logging.Nop())

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	jar, _ := cookiejar.New(nil)
	return &testApp{srv: srv, client: &http.Client{Jar: jar}, backend: be}
}

func (a *testApp) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return readBody(t, resp)
}

func (a *testApp) post(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := a.client.Post(a.srv.URL+path, "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func TestServer_Mount(t *testing.T) {
	t.Run("root redirects and keeps the key", func(t *testing.T) {
		app := newTestApp(t)
		status, body := app.get(t, "/?x_api_key=k")
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if !strings.Contains(body, "5 kun") {
			t.Errorf("expected remaining days on the dashboard:\n%s", body)
		}
		if !strings.Contains(body, "/app/history?x_api_key=k") {
			t.Error("links must carry the api key")
		}
	})

	t.Run("missing key shows the fixed message without a request", func(t *testing.T) {
		app := newTestApp(t)
		_, body := app.get(t, "/app")
		if !strings.Contains(body, "Siz hali ro&#39;yxatdan o&#39;tmagansiz") {
			t.Errorf("missing not-registered message:\n%s", body)
		}
		if n := app.backend.Calls("profile"); n != 0 {
			t.Errorf("expected no profile request, got %d", n)
		}
	})

	t.Run("reload renders the existing session", func(t *testing.T) {
		app := newTestApp(t)
		app.get(t, "/app?x_api_key=k")
		app.get(t, "/app?x_api_key=k")
		if n := app.backend.Calls("profile"); n != 1 {
			t.Errorf("expected one profile request, got %d", n)
		}
		app.get(t, "/app?x_api_key=k&mount=1")
		if n := app.backend.Calls("profile"); n != 2 {
			t.Errorf("mount=1 must reload the profile, got %d requests", n)
		}
	})
}

func TestServer_SessionFollowsTheKey(t *testing.T) {
	const notRegistered = "Siz hali ro&#39;yxatdan o&#39;tmagansiz"

	t.Run("no key on an existing cookie shows the error view", func(t *testing.T) {
		app := newTestApp(t)
		if _, body := app.get(t, "/app?x_api_key=k"); !strings.Contains(body, "5 kun") {
			t.Fatalf("expected dashboard:\n%s", body)
		}
		_, body := app.get(t, "/app")
		if strings.Contains(body, "5 kun") || !strings.Contains(body, notRegistered) {
			t.Errorf("keyless load must not show the previous profile:\n%s", body)
		}
		if n := app.backend.Calls("profile"); n != 1 {
			t.Errorf("keyless mount must not call the backend, got %d calls", n)
		}
	})

	t.Run("another key on an existing cookie remounts", func(t *testing.T) {
		app := newTestApp(t)
		app.get(t, "/app?x_api_key=k")
		_, body := app.get(t, "/app?x_api_key="+app.backend.RejectedKey)
		if strings.Contains(body, "5 kun") || !strings.Contains(body, notRegistered) {
			t.Errorf("rejected key must not show the previous profile:\n%s", body)
		}
		if n := app.backend.Calls("profile"); n != 2 {
			t.Errorf("expected a second profile request, got %d", n)
		}
	})

	t.Run("actions under another key go back to mount", func(t *testing.T) {
		app := newTestApp(t)
		app.get(t, "/app?x_api_key=k")
		app.client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
		resp, err := app.client.Post(app.srv.URL+"/app/history?x_api_key=other", "", nil)
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
		if loc := resp.Header.Get("Location"); loc != "/app?mount=1&x_api_key=other" {
			t.Errorf("unexpected redirect %q", loc)
		}
		if n := app.backend.Calls("history"); n != 0 {
			t.Errorf("history must not be fetched for a foreign session, got %d", n)
		}
	})
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) { return nil, domain.ErrLockBusy }

func TestServer_InternalErrorPage(t *testing.T) {
	app := newTestAppWithLocker(t, busyLocker{})
	status, body := app.get(t, "/app?x_api_key=k")
	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
	if !strings.Contains(body, "Nimadir xato ketdi") || strings.Contains(body, "Xatolik yuz berdi") {
		t.Errorf("expected the generic error text:\n%s", body)
	}
}

func TestServer_Navigation(t *testing.T) {
	app := newTestApp(t)
	app.get(t, "/app?x_api_key=k")

	_, body := app.post(t, "/app/faq?x_api_key=k")
	if !strings.Contains(body, "Obunani qanday yangilayman?") {
		t.Errorf("faq not rendered:\n%s", body)
	}
	app.post(t, "/app/back?x_api_key=k")
	app.post(t, "/app/faq?x_api_key=k")
	if n := app.backend.Calls("faq"); n != 1 {
		t.Errorf("expected one faq request, got %d", n)
	}

	_, body = app.post(t, "/app/history?x_api_key=k")
	if !strings.Contains(body, "05.01.2025") || !strings.Contains(body, " UZS") {
		t.Errorf("history not rendered:\n%s", body)
	}
	status, body := app.post(t, "/app/history/9?x_api_key=k")
	if status != http.StatusOK || !strings.Contains(body, "05.01.2025") {
		t.Errorf("out of range page must leave history unchanged, got %d", status)
	}
	_, body = app.post(t, "/app/history/3?x_api_key=k")
	if strings.Contains(body, "05.01.2025") {
		t.Error("page 3 must not show the first row")
	}

	_, body = app.post(t, "/app/back?x_api_key=k")
	if !strings.Contains(body, "5 kun") {
		t.Error("back must return to the dashboard")
	}
}

func TestServer_ActionWithoutSession(t *testing.T) {
	app := newTestApp(t)
	app.client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := app.client.Post(app.srv.URL+"/app/faq?x_api_key=k", "", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/app?mount=1&x_api_key=k" {
		t.Errorf("unexpected redirect %q", loc)
	}
}

func TestServer_Upload(t *testing.T) {
	app := newTestApp(t)
	app.get(t, "/app?x_api_key=k")

	_, body := app.post(t, "/app/renewal/accept?x_api_key=k")
	if !strings.Contains(body, `name="payment_check"`) {
		t.Fatalf("picker not shown:\n%s", body)
	}

	status, body := app.postFile(t, "/app/upload/file?x_api_key=k", "check.png", "image/png",
		[]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR receipt"))
	if status != http.StatusOK || !strings.Contains(body, "check.png") {
		t.Fatalf("file not chosen (%d):\n%s", status, body)
	}

	_, body = app.post(t, "/app/upload/submit?x_api_key=k")
	if !strings.Contains(body, "muvaffaqiyatli") {
		t.Errorf("missing success message:\n%s", body)
	}
	if got := app.backend.Receipts(); len(got) != 1 || got[0].Name != "check.png" {
		t.Errorf("unexpected receipts %+v", got)
	}

	_, body = app.postFile(t, "/app/upload/file?x_api_key=k", "notes.txt", "text/plain", []byte("hello"))
	if !strings.Contains(body, "Faqat rasm fayllarini yuklash mumkin") {
		t.Errorf("non-image must be rejected:\n%s", body)
	}

	_, body = app.post(t, "/app/upload/cancel?x_api_key=k")
	if strings.Contains(body, `name="payment_check"`) {
		t.Error("cancel must hide the picker")
	}
}

func (a *testApp) postFile(t *testing.T, path, name, contentType string, data []byte) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="payment_check"; filename=%q`, name))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	resp, err := a.client.Post(a.srv.URL+path, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return readBody(t, resp)
}

func TestServer_Health(t *testing.T) {
	app := newTestApp(t)
	if status, body := app.get(t, "/healthz"); status != http.StatusOK || body != "OK" {
		t.Errorf("unexpected health %d %q", status, body)
	}
	if status, _ := app.get(t, "/metrics"); status != http.StatusOK {
		t.Errorf("expected metrics 200, got %d", status)
	}
}

func TestSessionCookies(t *testing.T) {
	c := NewSessionCookies(testSecret, "pm", "", false, time.Hour)

	rec := httptest.NewRecorder()
	if err := c.Mint(rec, "01HSESSION", "k"); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly || cookies[0].SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.AddCookie(cookies[0])
	id, err := c.SessionFor(req, "k")
	if err != nil || id != "01HSESSION" {
		t.Errorf("expected session id, got %q %v", id, err)
	}

	for _, key := range []string{"", "k2", "K"} {
		if _, err := c.SessionFor(req, key); !errors.Is(err, errKeyMismatch) {
			t.Errorf("key %q: expected errKeyMismatch, got %v", key, err)
		}
	}

	other := NewSessionCookies("another-secret-of-enough-length", "pm", "", false, time.Hour)
	if _, err := other.SessionFor(req, "k"); err == nil {
		t.Error("cookie signed with another secret must be rejected")
	}

	if _, err := c.SessionFor(httptest.NewRequest(http.MethodGet, "/app", nil), "k"); err == nil {
		t.Error("request without cookie must have no session")
	}
}
