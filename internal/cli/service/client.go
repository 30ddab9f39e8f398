package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ReWear/internal/catalog"
	"ReWear/internal/cli/api"
	fsrepo "ReWear/internal/cli/repo/fs"
	"ReWear/internal/config"
	"ReWear/internal/model"
)

// ErrNotLoggedIn — нет сохранённого токена.
var ErrNotLoggedIn = errors.New("не выполнен вход: выполните login или register")

// NewListing — данные нового объявления.
type NewListing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type,omitempty"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	Points      int64    `json:"points"`
}

type RedeemResult struct {
	Swap    *model.SwapRecord `json:"swap"`
	Item    *model.Item       `json:"item"`
	Balance int64             `json:"balance"`
}

type DashboardStats struct {
	Points          int64 `json:"points"`
	Listed          int   `json:"listed"`
	Available       int   `json:"available"`
	Exchanged       int   `json:"exchanged"`
	PendingIncoming int   `json:"pending_incoming"`
	PendingOutgoing int   `json:"pending_outgoing"`
}

type Dashboard struct {
	User     *model.User         `json:"user"`
	Listings []model.Item        `json:"listings"`
	Incoming []model.SwapRecord  `json:"incoming"`
	Outgoing []model.SwapRecord  `json:"outgoing"`
	Ledger   []model.LedgerEntry `json:"ledger"`
	Stats    DashboardStats      `json:"stats"`
}

type AdminStats struct {
	TotalItems    int64 `json:"total_items"`
	PendingItems  int64 `json:"pending_items"`
	ApprovedItems int64 `json:"approved_items"`
	RejectedItems int64 `json:"rejected_items"`
	RemovedItems  int64 `json:"removed_items"`
	TotalUsers    int64 `json:"total_users"`
}

type UploadResult struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Client — обращения CLI к серверному API от имени сохранённого пользователя.
type Client struct {
	baseURL string
	store   fsrepo.AuthFSStore
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		store:   fsrepo.AuthFSStore{TokenFile: cfg.TokenFile},
	}
}

// Store — хранилище токена и логина клиента.
func (c *Client) Store() fsrepo.AuthFSStore { return c.store }

func (c *Client) endpoint(path string) string { return c.baseURL + path }

func (c *Client) token() (string, error) {
	tok, err := c.store.Load()
	if err != nil {
		return "", ErrNotLoggedIn
	}
	return tok, nil
}

// expect проверяет код ответа и разбирает тело в out (если out != nil).
func expect(resp *http.Response, body []byte, want int, out any) error {
	if resp.StatusCode != want {
		return api.NewServerError(resp.StatusCode, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(path string, auth bool, out any) error {
	var tok string
	if auth {
		var err error
		if tok, err = c.token(); err != nil {
			return err
		}
	}
	resp, body, err := api.GetJSON(c.endpoint(path), tok)
	if err != nil {
		return err
	}
	return expect(resp, body, http.StatusOK, out)
}

func (c *Client) post(path string, payload any, want int, out any) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	resp, body, err := api.PostJSON(c.endpoint(path), payload, tok)
	if err != nil {
		return err
	}
	return expect(resp, body, want, out)
}

func (c *Client) Me() (*model.User, error) {
	var u model.User
	if err := c.get("/api/user/me", true, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Browse — витрина сервера; не требует входа.
func (c *Client) Browse(q catalog.Query) ([]model.Item, error) {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("q", q.Search)
	set("category", q.Category)
	set("size", q.Size)
	set("condition", q.Condition)
	set("sort", string(q.Sort))

	path := "/api/items"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}
	var items []model.Item
	if err := c.get(path, false, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Item(id string) (*model.Item, error) {
	var it model.Item
	if err := c.get("/api/items/"+url.PathEscape(id), false, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Changes — вещи, изменённые после since (пусто — все), и время сервера.
func (c *Client) Changes(since string) ([]model.Item, string, error) {
	path := "/api/items/changes"
	if since != "" {
		path += "?since=" + url.QueryEscape(since)
	}
	var out struct {
		Items      []model.Item `json:"items"`
		ServerTime string       `json:"server_time"`
	}
	if err := c.get(path, true, &out); err != nil {
		return nil, "", err
	}
	return out.Items, out.ServerTime, nil
}

func (c *Client) Create(in NewListing) (*model.Item, error) {
	var it model.Item
	if err := c.post("/api/items", in, http.StatusCreated, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Upload загружает файл изображения; тип определяется по содержимому.
func (c *Client) Upload(path string) (*UploadResult, error) {
	tok, err := c.token()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	resp, body, err := api.PostMultipartFile(c.endpoint("/api/images"), filepath.Base(path),
		http.DetectContentType(data), data, tok)
	if err != nil {
		return nil, err
	}
	var res UploadResult
	if err := expect(resp, body, http.StatusCreated, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Redeem(itemID string) (*RedeemResult, error) {
	var res RedeemResult
	if err := c.post("/api/items/"+url.PathEscape(itemID)+"/redeem", nil, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RequestSwap(itemID, message, offeredItemID string) (*model.SwapRecord, error) {
	payload := map[string]string{"message": message}
	if offeredItemID != "" {
		payload["offered_item_id"] = offeredItemID
	}
	var rec model.SwapRecord
	if err := c.post("/api/items/"+url.PathEscape(itemID)+"/swap", payload, http.StatusCreated, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SwapActions — допустимые ответы на заявку.
var SwapActions = []string{"accept", "decline", "cancel", "complete"}

func (c *Client) RespondSwap(swapID, action string) (*model.SwapRecord, error) {
	if !catalog.Contains(SwapActions, action) {
		return nil, fmt.Errorf("unknown action %q (accept, decline, cancel, complete)", action)
	}
	var rec model.SwapRecord
	if err := c.post("/api/swaps/"+url.PathEscape(swapID)+"/"+action, nil, http.StatusOK, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Dashboard() (*Dashboard, error) {
	var d Dashboard
	if err := c.get("/api/user/dashboard", true, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Queue(status string) ([]model.Item, error) {
	path := "/api/admin/items"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var items []model.Item
	if err := c.get(path, true, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) AdminStats() (*AdminStats, error) {
	var s AdminStats
	if err := c.get("/api/admin/stats", true, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ModerationActions — решения администратора по объявлению.
var ModerationActions = []string{"approve", "reject", "flag"}

func (c *Client) Moderate(itemID, action, notes string) (*model.Item, error) {
	if !catalog.Contains(ModerationActions, action) {
		return nil, fmt.Errorf("unknown action %q (approve, reject, flag)", action)
	}
	var it model.Item
	path := "/api/admin/items/" + url.PathEscape(itemID) + "/" + action
	if err := c.post(path, map[string]string{"notes": notes}, http.StatusOK, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// DeleteListing — безвозвратное удаление объявления администратором.
func (c *Client) DeleteListing(itemID string, confirm bool) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	path := "/api/admin/items/" + url.PathEscape(itemID) + "?confirm=" + strconv.FormatBool(confirm)
	resp, body, err := api.Delete(c.endpoint(path), tok)
	if err != nil {
		return err
	}
	return expect(resp, body, http.StatusNoContent, nil)
}

func (c *Client) Promote(userID string) (*model.User, error) {
	var u model.User
	if err := c.post("/api/admin/users/"+url.PathEscape(userID)+"/promote", nil, http.StatusOK, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// AdjustPoints возвращает новый баланс пользователя.
func (c *Client) AdjustPoints(userID string, delta int64, note string) (int64, error) {
	var out struct {
		Balance int64 `json:"balance"`
	}
	payload := map[string]any{"delta": delta, "note": note}
	if err := c.post("/api/admin/users/"+url.PathEscape(userID)+"/points", payload, http.StatusOK, &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}
