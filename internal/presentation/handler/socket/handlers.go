package socket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/queueline/realtime/internal/infrastructure/configs"
	"github.com/queueline/realtime/internal/infrastructure/logging"
	"github.com/queueline/realtime/internal/infrastructure/ws"
)

type Handler struct {
	core      *ws.Core
	logger    logging.Logger
	upgrader  websocket.Upgrader
	queueSize int
}

func NewHandler(core *ws.Core, cfg configs.SocketConfig, logger logging.Logger) *Handler {
	return &Handler{
		core:   core,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		queueSize: cfg.SendQueueSize,
	}
}

// ServeWS upgrades the request and starts the connection's pumps. The
// connection stays anonymous until it emits a join or register event.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.Socket, logging.Dispatch, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ClientIp:     r.RemoteAddr,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, h.queueSize)
	h.core.HandleConnect(client)

	h.logger.Info(logging.Socket, logging.Dispatch, "connection opened", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ID,
		logging.ClientIp:     r.RemoteAddr,
	})

	go client.WritePump()
	go client.ReadPump(h.core)
}
