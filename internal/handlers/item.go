package handlers

import (
	"net/http"
	"time"

	"ReWear/internal/catalog"
	"ReWear/internal/model"
	"ReWear/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ItemHandler — витрина, объявления, выкуп и заявки на обмен.
type ItemHandler struct {
	ItemService     *service.ItemService
	ExchangeService *service.ExchangeService
	Logger          *zap.SugaredLogger
}

// NewItemHandler создаёт хендлер items
func NewItemHandler(items *service.ItemService, exchange *service.ExchangeService, logger *zap.SugaredLogger) *ItemHandler {
	return &ItemHandler{ItemService: items, ExchangeService: exchange, Logger: logger}
}

// ChangesResponse — ответ pull-синхронизации клиента.
type ChangesResponse struct {
	Items      []model.Item `json:"items"`
	ServerTime string       `json:"server_time"`
}

type SwapRequest struct {
	Message       string `json:"message"`
	OfferedItemID string `json:"offered_item_id,omitempty"`
}

// List — витрина с поиском, фильтрами и сортировкой.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortKey, err := catalog.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.ItemService.Browse(r.Context(), catalog.Query{
		Search:    q.Get("q"),
		Category:  q.Get("category"),
		Size:      q.Get("size"),
		Condition: q.Get("condition"),
		Sort:      sortKey,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "List", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Changes отдаёт вещи, изменённые после since (RFC3339); без since — все.
func (h *ItemHandler) Changes(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Logger.Warnw("Changes: invalid since", "value", raw, "error", err)
			writeError(w, http.StatusBadRequest, "invalid since (RFC3339 expected)")
			return
		}
		since = t
	}

	items, serverTime, err := h.ItemService.ChangesSince(r.Context(), since)
	if err != nil {
		writeServiceError(w, h.Logger, "Changes", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, ChangesResponse{
		Items:      items,
		ServerTime: serverTime.UTC().Format(time.RFC3339Nano),
	})
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	it, err := h.ItemService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "GetItem", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.NewItem
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("CreateItem: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	it, err := h.ItemService.Create(r.Context(), currentUserID(r), req)
	if err != nil {
		writeServiceError(w, h.Logger, "CreateItem", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *ItemHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	res, err := h.ExchangeService.Redeem(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "Redeem", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ItemHandler) RequestSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.Logger.Warnw("RequestSwap: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	rec, err := h.ExchangeService.RequestSwap(r.Context(), currentUserID(r), chi.URLParam(r, "id"), req.Message, req.OfferedItemID)
	if err != nil {
		writeServiceError(w, h.Logger, "RequestSwap", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
