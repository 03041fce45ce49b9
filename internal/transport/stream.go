package transport

import (
	"net/http"
	"time"

	apperrors "go-posture-guard/internal/errors"
	"go-posture-guard/internal/logger"
	"go-posture-guard/internal/service"
	"go-posture-guard/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var streamJSON = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser clients post camera frames from arbitrary origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	streamWriteTimeout = 10 * time.Second
	// Frames larger than this are not plausible camera captures
	streamMaxMessageSize = 10 << 20
)

// streamFrames upgrades the connection to a websocket and evaluates frames
// as they arrive. One message in, one result out; evaluations for the
// session are serialized by the session itself, so a slow frame simply
// backpressures the client.
func streamFrames(svc service.PostureService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		if _, err := svc.GetSession(c.Request.Context(), sessionID); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "unknown session", err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.WithError(err).Error("Websocket upgrade failed")
			return
		}
		defer conn.Close()
		conn.SetReadLimit(streamMaxMessageSize)

		logger.WithSession(sessionID).Info("Posture stream opened")
		defer logger.WithSession(sessionID).Info("Posture stream closed")

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.WithSession(sessionID).WithError(err).Warn("Posture stream read failed")
				}
				return
			}

			var frame models.StreamFrame
			if err := streamJSON.Unmarshal(payload, &frame); err != nil {
				if !writeStreamResult(conn, models.StreamResult{Error: "malformed frame message"}) {
					return
				}
				continue
			}

			result, err := svc.AnalyzeFrame(c.Request.Context(), sessionID, frame.Image, frame.Landmarks)
			if err != nil {
				if !writeStreamResult(conn, models.StreamResult{Error: err.Error()}) {
					return
				}
				continue
			}

			if !writeStreamResult(conn, models.StreamResult{Result: result}) {
				return
			}
		}
	}
}

// writeStreamResult sends one message, returning false when the connection
// is no longer usable.
func writeStreamResult(conn *websocket.Conn, msg models.StreamResult) bool {
	payload, err := streamJSON.Marshal(msg)
	if err != nil {
		return false
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload) == nil
}
