package http

import (
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wireline/internal/connection"
	"wireline/internal/core"
	"wireline/internal/handler"
)

// NewWSHandler builds the gin handler that upgrades a request to a
// WebSocket connection and runs it for as long as it stays open. The
// participant identifier is taken from the "name" query parameter and
// reserved in the registry before the handshake starts, so a duplicate
// or reserved identifier is rejected with a plain HTTP response rather
// than an upgrade that immediately has to be torn down.
func NewWSHandler(registry *core.Registry, h *handler.Handler, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		participantID := c.Query("name")
		sessionID := uuid.NewString()
		reqLog := log.With().Str("session_id", sessionID).Str("participant", participantID).Logger()

		outcome, participant, err := connection.Reserve(registry, participantID, c.ClientIP())
		if err != nil {
			reqLog.Debug().Err(err).Msg("rejected before upgrade")
			c.String(stdhttp.StatusBadRequest, "identifier rejected")
			return
		}

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			reqLog.Warn().Err(err).Msg("ws accept error")
			connection.Release(registry, participantID)
			return
		}

		if err := connection.Handle(c.Request.Context(), conn, participant, outcome == core.Fresh, registry, h, reqLog); err != nil {
			reqLog.Debug().Err(err).Msg("connection ended")
		}
	}
}
