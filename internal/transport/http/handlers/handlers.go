package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/gorilla/websocket"
	"github.com/haroldove90-spec/Cowele/internal/app"
	"github.com/haroldove90-spec/Cowele/internal/metrics"
	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
)

// maxUploadBytes: предел multipart-загрузки фото и аватаров.
const maxUploadBytes = 10 << 20

// Handlers агрегирует зависимости: контейнер состояния, метрики, валидатор DTO
// и апгрейдер потока карты.
type Handlers struct {
	App      *app.App
	Metrics  *metrics.Metrics
	validate *validator.Validate
	upgrader websocket.Upgrader
}

// New собирает обработчики. origins: источники, которым разрешён поток /map/stream
// (те же, что у CORS).
func New(a *app.App, m *metrics.Metrics, origins []string) *Handlers {
	return &Handlers{
		App:      a,
		Metrics:  m,
		validate: validator.New(),
		upgrader: newStreamUpgrader(origins),
	}
}

// writeJSON: единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict: строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	return dec.Decode(value)
}

// decodeValid: decodeStrict + проверка тегов validate.
// Любая ошибка сводится к apierrors.ErrInvalidRequest.
func (h *Handlers) decodeValid(r *http.Request, value any) error {
	if err := decodeStrict(r, value); err != nil {
		return fmt.Errorf("%w: %w", apierrors.ErrInvalidRequest, err)
	}

	if err := h.validate.Struct(value); err != nil {
		return fmt.Errorf("%w: %w", apierrors.ErrInvalidRequest, err)
	}

	return nil
}

// confirmed читает ?confirm=true. Отсутствие или мусор: false.
func confirmed(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return err == nil && v
}

// upload: файл из multipart-поля "file".
type upload struct {
	filename    string
	contentType string
	data        []byte
}

func readUpload(w http.ResponseWriter, r *http.Request) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return upload{}, fmt.Errorf("%w: %w", apierrors.ErrInvalidRequest, err)
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return upload{}, fmt.Errorf("%w: %w", apierrors.ErrInvalidRequest, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return upload{}, fmt.Errorf("%w: %w", apierrors.ErrInvalidRequest, err)
	}

	ct := hdr.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}

	return upload{filename: hdr.Filename, contentType: ct, data: data}, nil
}
