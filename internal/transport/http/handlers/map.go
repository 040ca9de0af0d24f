package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/haroldove90-spec/Cowele/pkg/log"

	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
	streamReadLimit  = 512
)

// newStreamUpgrader: апгрейдер потока команд карты с проверкой Origin.
func newStreamUpgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originAllowed(origins),
	}
}

// originAllowed: CORS не действует на апгрейд WebSocket, поэтому Origin проверяется здесь.
// Без заголовка Origin (не браузер) и с тем же хостом запрос допускается; иначе Origin
// должен совпасть с одним из origins, "*" допускает любой.
func originAllowed(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}

		if strings.EqualFold(u.Host, r.Host) {
			return true
		}

		for _, o := range origins {
			if o == "*" || strings.EqualFold(strings.TrimSuffix(o, "/"), origin) {
				return true
			}
		}

		return false
	}
}

func (h *Handlers) FitMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fitResponse{ManualFit: h.App.FitMap()})
}

func (h *Handlers) PickerClick(w http.ResponseWriter, r *http.Request) {
	var in pointRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.App.PickerClick(in.point()))
}

func (h *Handlers) PickerZoom(w http.ResponseWriter, r *http.Request) {
	var in zoomRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.App.PickerZoom(in.Zoom)
	w.WriteHeader(http.StatusNoContent)
}

// DeviceLocation принимает позицию устройства от презентационного слоя.
// Учитывается только первый отчёт; без ожидающего запроса геолокации: 503.
func (h *Handlers) DeviceLocation(w http.ResponseWriter, r *http.Request) {
	var in pointRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.App.ReportLocation(in.point()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MapStream отдаёт команды контроллера карты в WebSocket, по одному JSON-объекту на сообщение.
// Клиентские сообщения игнорируются; чтение нужно только для pong и обнаружения разрыва.
func (h *Handlers) MapStream(w http.ResponseWriter, r *http.Request) {
	const op = "http/MapStream"

	lg := log.Op(r.Context(), op)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		lg.Warn("websocket upgrade failed", "origin", r.Header.Get("Origin"), "err", err)
		return
	}
	defer conn.Close()

	cmds, cancel := h.App.SubscribeMap()
	defer cancel()

	h.Metrics.StreamSubscribers(1)
	defer h.Metrics.StreamSubscribers(-1)

	lg.Info("map stream opened")

	closed := make(chan struct{})
	go func() {
		defer close(closed)

		conn.SetReadLimit(streamReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			lg.Info("map stream closed by peer")
			return
		case cmd, ok := <-cmds:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(streamWriteWait))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(cmd); err != nil {
				lg.Warn("map stream write failed", "err", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
