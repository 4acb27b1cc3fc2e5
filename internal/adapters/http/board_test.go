package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	noticeStore "noticeboard/internal/adapters/storage/notice"
	"noticeboard/internal/domain/notice"
)

var csrfFieldPattern = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

// boardSession holds the CSRF cookie and form token from a board page GET.
type boardSession struct {
	cookies []*http.Cookie
	token   string
}

func openBoard(t *testing.T, h http.Handler, page string) (boardSession, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", page, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d", page, rr.Code)
	}
	m := csrfFieldPattern.FindStringSubmatch(rr.Body.String())
	if m == nil {
		t.Fatal("board page has no CSRF field")
	}
	return boardSession{cookies: rr.Result().Cookies(), token: m[1]}, rr
}

func (s boardSession) post(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	form.Set("gorilla.csrf.Token", s.token)
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// TestBoard_RendersNewestFirstWithMarkdown tests page order and content rendering.
func TestBoard_RendersNewestFirstWithMarkdown(t *testing.T) {
	store := noticeStore.NewMemoryStore(
		notice.Notice{ID: "old", Title: "Older notice", Content: "plain", Duration: 10, CreatedAt: 1000},
		notice.Notice{ID: "new", Title: "Newer notice", Content: "**bold** <script>alert(1)</script>", Duration: 2.5, CreatedAt: 2000},
	)
	h := newTestHandler(t, store)

	_, rr := openBoard(t, h, "/")
	body := rr.Body.String()

	if strings.Index(body, "Newer notice") > strings.Index(body, "Older notice") {
		t.Error("expected newest notice first")
	}
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Error("expected markdown to be rendered")
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("raw HTML in content must not be rendered")
	}
	if !strings.Contains(body, `http-equiv="refresh" content="5"`) {
		t.Error("expected meta refresh at the poll interval")
	}
	if !strings.Contains(body, "2.5s") {
		t.Error("expected duration to be shown")
	}
}

// TestBoard_CreateAndDelete tests the CSRF protected form flow.
func TestBoard_CreateAndDelete(t *testing.T) {
	store := noticeStore.NewMemoryStore()
	h := newTestHandler(t, store)
	sess, _ := openBoard(t, h, "/board/new")

	rr := sess.post(h, "/board/notices", url.Values{
		"title":          {"Fire drill"},
		"content":        {"Evacuate at noon"},
		"duration":       {"30"},
		"admin_password": {testPassword},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	list, _ := store.Load(context.Background())
	if len(list) != 1 || list[0].Title != "Fire drill" || list[0].Duration != 30 {
		t.Fatalf("stored = %+v", list)
	}

	rr = sess.post(h, "/board/notices/"+list[0].ID+"/delete", url.Values{"admin_password": {testPassword}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if list, _ = store.Load(context.Background()); len(list) != 0 {
		t.Errorf("len after delete = %d, want 0", len(list))
	}

	rr = sess.post(h, "/board/notices/gone/delete", url.Values{"admin_password": {testPassword}})
	if rr.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", rr.Code)
	}
}

// TestBoard_CreateErrors tests 401 and 400 re-renders keep the form values.
func TestBoard_CreateErrors(t *testing.T) {
	store := noticeStore.NewMemoryStore()
	h := newTestHandler(t, store)
	sess, _ := openBoard(t, h, "/board/new")

	rr := sess.post(h, "/board/notices", url.Values{
		"title": {"Draft title"}, "content": {"c"}, "duration": {"5"}, "admin_password": {"wrong"},
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="Draft title"`) {
		t.Error("expected the title to be kept in the form")
	}
	if strings.Contains(rr.Body.String(), `http-equiv="refresh"`) {
		t.Error("a 401 render must not refresh away the typed form")
	}

	rr = sess.post(h, "/board/notices", url.Values{
		"title": {"t"}, "content": {"c"}, "duration": {"-1"}, "admin_password": {testPassword},
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad duration status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "duration must be a positive number") {
		t.Error("expected the validation message on the page")
	}
	if strings.Contains(rr.Body.String(), `http-equiv="refresh"`) {
		t.Error("a 400 render must not refresh away the error")
	}
	if store.Saves() != 0 {
		t.Errorf("saves = %d, want 0", store.Saves())
	}
}

// TestBoard_NewNoticePageDoesNotRefresh tests that the post form is kept off the polling page.
func TestBoard_NewNoticePageDoesNotRefresh(t *testing.T) {
	h := newTestHandler(t, noticeStore.NewMemoryStore())

	_, rr := openBoard(t, h, "/board/new")
	body := rr.Body.String()
	if strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("form page must not carry a meta refresh")
	}
	if !strings.Contains(body, `action="/board/notices"`) {
		t.Error("expected the post form")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	body = rr.Body.String()
	if !strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("board list must refresh")
	}
	if strings.Contains(body, `action="/board/notices"`) {
		t.Error("board list must not embed the post form")
	}
	if !strings.Contains(body, `href="/board/new"`) {
		t.Error("expected a link to the post form")
	}
}

// TestBoard_DeleteErrorDoesNotRefresh tests that a failed delete keeps its message on screen.
func TestBoard_DeleteErrorDoesNotRefresh(t *testing.T) {
	store := noticeStore.NewMemoryStore(notice.Notice{ID: "n1", Title: "Kept", Content: "c", Duration: 5, CreatedAt: 1000})
	h := newTestHandler(t, store)
	sess, _ := openBoard(t, h, "/")

	rr := sess.post(h, "/board/notices/n1/delete", url.Values{"admin_password": {"wrong"}})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if strings.Contains(rr.Body.String(), `http-equiv="refresh"`) {
		t.Error("an error render must not refresh")
	}
	if !strings.Contains(rr.Body.String(), "Kept") {
		t.Error("expected the notice list under the error")
	}
}

// TestBoard_RejectsMissingCSRFToken tests that cross-site form posts fail.
func TestBoard_RejectsMissingCSRFToken(t *testing.T) {
	store := noticeStore.NewMemoryStore()
	h := newTestHandler(t, store)

	form := url.Values{"title": {"t"}, "content": {"c"}, "duration": {"5"}, "admin_password": {testPassword}}
	req := httptest.NewRequest("POST", "/board/notices", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
	if store.Saves() != 0 {
		t.Error("store must not be touched")
	}
}

// TestRenderMarkdown tests safe markdown conversion.
func TestRenderMarkdown(t *testing.T) {
	got := string(renderMarkdown("# Heading\n\nline one\nline two"))
	if !strings.Contains(got, "<h1>Heading</h1>") {
		t.Errorf("missing heading: %s", got)
	}
	if !strings.Contains(got, "<br>") {
		t.Errorf("expected hard wraps: %s", got)
	}
}
