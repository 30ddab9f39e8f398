package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"ReWear/internal/cli/repo"
)

const authCookie = "auth_token"

// do выполняет запрос и читает тело целиком. Если token непустой, он передаётся как auth cookie.
func do(req *http.Request, token string) (*http.Response, []byte, error) {
	if token != "" {
		req.Header.Set("Cookie", authCookie+"="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, bytes.TrimSpace(body), nil
}

// PostJSON sends a JSON POST request. nil payload sends an empty body.
func PostJSON(url string, payload any, token string) (*http.Response, []byte, error) {
	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(http.MethodPost, url, rd)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return do(req, token)
}

// GetJSON sends a GET request.
func GetJSON(url, token string) (*http.Response, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	return do(req, token)
}

// Delete sends a DELETE request.
func Delete(url, token string) (*http.Response, []byte, error) {
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return nil, nil, err
	}
	return do(req, token)
}

// PostMultipartFile отправляет файл в поле "file" как multipart/form-data.
func PostMultipartFile(url, fileName, contentType string, data []byte, token string) (*http.Response, []byte, error) {
	if fileName == "" {
		return nil, nil, errors.New("empty file name")
	}
	if len(data) == 0 {
		return nil, nil, errors.New("empty file")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	fw, err := mw.CreatePart(h)
	if err != nil {
		return nil, nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(req, token)
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его в store.
func PersistAuthFromResponse(resp *http.Response, store repo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == authCookie && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}

// ServerError — ответ сервера с кодом ошибки.
type ServerError struct {
	Status    int
	Message   string
	Shortfall int64
}

func (e *ServerError) Error() string {
	if e.Shortfall > 0 {
		return fmt.Sprintf("%s (need %d more points)", e.Message, e.Shortfall)
	}
	return e.Message
}

// NewServerError разбирает тело {"error": "...", "shortfall": n}; иначе берёт текст как есть.
func NewServerError(status int, body []byte) *ServerError {
	e := &ServerError{Status: status}
	var payload struct {
		Error     string `json:"error"`
		Shortfall int64  `json:"shortfall"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		e.Message, e.Shortfall = payload.Error, payload.Shortfall
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
