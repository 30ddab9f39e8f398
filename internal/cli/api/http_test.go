package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	fsrepo "ReWear/internal/cli/repo/fs"
)

// helper: перенастройка конфиг‑каталога в temp
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

func TestPostJSON_SendsToken_And_ParsesBody(t *testing.T) {
	// test server проверяет cookie и JSON
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := r.Header.Get("Cookie"); !strings.Contains(c, "auth_token=tok123") {
			t.Errorf("Cookie header missing token, got: %q", c)
		}
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Errorf("bad json: %v", err)
		}
		if m["x"] != float64(1) { // JSON number → float64
			t.Errorf("unexpected payload: %#v", m)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	}))
	defer ts.Close()

	resp, body, err := PostJSON(ts.URL+"/api", map[string]any{"x": 1}, "tok123")
	if err != nil {
		t.Fatalf("PostJSON err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("body should be trimmed: %q", string(body))
	}
}

// PostJSON без токена и без payload — ни Cookie, ни тела
func TestPostJSON_NoToken_NilPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := r.Header.Get("Cookie"); c != "" {
			t.Errorf("Cookie must be empty when token not provided, got: %q", c)
		}
		b, _ := io.ReadAll(r.Body)
		if len(b) != 0 {
			t.Errorf("body must be empty, got %q", b)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	resp, _, err := PostJSON(ts.URL, nil, "")
	if err != nil {
		t.Fatalf("PostJSON err: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestPostJSON_Errors(t *testing.T) {
	// chan в payload вызовет ошибку json.Marshal
	if _, _, err := PostJSON("http://example.invalid", map[string]any{"c": make(chan int)}, ""); err == nil {
		t.Fatalf("expected marshal error")
	}
	if _, _, err := PostJSON("http://127.0.0.1:1", map[string]any{"a": 1}, ""); err == nil {
		t.Fatalf("expected network error for unreachable URL")
	}
	if _, _, err := PostJSON("http://[::1", map[string]any{"a": 1}, ""); err == nil {
		t.Fatalf("expected new request error for invalid URL")
	}
}

func TestGetJSON_And_Delete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("q") != "denim" {
				t.Errorf("query lost: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[]`))
		case http.MethodDelete:
			if !strings.Contains(r.Header.Get("Cookie"), "auth_token=tok") {
				t.Errorf("missing auth cookie")
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer ts.Close()

	resp, body, err := GetJSON(ts.URL+"/api/items?q=denim", "")
	if err != nil || resp.StatusCode != http.StatusOK || string(body) != "[]" {
		t.Fatalf("get: status=%v body=%q err=%v", resp, body, err)
	}
	resp, _, err = Delete(ts.URL+"/api/images/1", "tok")
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %v %v", resp, err)
	}
}

func TestPersistAuthFromResponse(t *testing.T) {
	setTempCfg(t)
	store := fsrepo.AuthFSStore{}

	// auth_token вторым — должен сохраниться
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", (&http.Cookie{Name: "other", Value: "abc"}).String())
	resp.Header.Add("Set-Cookie", (&http.Cookie{Name: "auth_token", Value: "tok-abc"}).String())
	if err := PersistAuthFromResponse(resp, store); err != nil {
		t.Fatalf("persist: %v", err)
	}
	tok, err := store.Load()
	if err != nil || tok != "tok-abc" {
		t.Fatalf("token not saved, got %q err=%v", tok, err)
	}

	// нет cookie
	if err := PersistAuthFromResponse(&http.Response{Header: http.Header{}}, store); err == nil {
		t.Fatalf("expected error when no auth cookie")
	}
	// пустое значение
	resp = &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", (&http.Cookie{Name: "auth_token", Value: ""}).String())
	if err := PersistAuthFromResponse(resp, store); err == nil {
		t.Fatalf("expected error for empty auth_token cookie value")
	}
}

func TestPostMultipartFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data;") {
			t.Errorf("not multipart: %s", r.Header.Get("Content-Type"))
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if string(b) != "PNGDATA" || hdr.Filename != "a.png" || hdr.Header.Get("Content-Type") != "image/png" {
			t.Errorf("unexpected part: %q %q %q", b, hdr.Filename, hdr.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(` {"id":"img1"} `))
	}))
	defer ts.Close()

	resp, body, err := PostMultipartFile(ts.URL, "a.png", "image/png", []byte("PNGDATA"), "tok")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusCreated || string(body) != `{"id":"img1"}` {
		t.Fatalf("status=%d body=%q", resp.StatusCode, body)
	}

	if _, _, err := PostMultipartFile(ts.URL, "", "", []byte{1}, ""); err == nil {
		t.Fatalf("empty name should fail")
	}
	if _, _, err := PostMultipartFile(ts.URL, "a.png", "", nil, ""); err == nil {
		t.Fatalf("empty data should fail")
	}
	if _, _, err := PostMultipartFile("http://[::1", "a.png", "", []byte{1}, ""); err == nil {
		t.Fatalf("expected new request error for invalid URL")
	}
}

func TestNewServerError(t *testing.T) {
	e := NewServerError(422, []byte(`{"error":"insufficient points","shortfall":15}`))
	if e.Message != "insufficient points" || e.Shortfall != 15 {
		t.Fatalf("unexpected: %#v", e)
	}
	if !strings.Contains(e.Error(), "15") {
		t.Fatalf("shortfall not in message: %s", e.Error())
	}
	if got := NewServerError(500, []byte("boom")).Error(); got != "boom" {
		t.Fatalf("plain body: %q", got)
	}
	if got := NewServerError(502, nil).Error(); got != "Bad Gateway" {
		t.Fatalf("empty body: %q", got)
	}
}
