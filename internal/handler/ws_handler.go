package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"taskflow/internal/broadcast"
	"taskflow/internal/domain"
	"taskflow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set custom headers on websocket dials; the token has
	// already been checked by the auth middleware on this route.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub       *broadcast.Hub
	workflows *workflow.Service
}

func NewWSHandler(hub *broadcast.Hub, workflows *workflow.Service) *WSHandler {
	return &WSHandler{hub: hub, workflows: workflows}
}

// scopeMessage is what a connected client sends to manage its
// subscriptions.
type scopeMessage struct {
	Action string `json:"action"`
	Scope  string `json:"scope"`
}

// wsClient adapts one websocket connection to the broadcast hub. Events are
// queued on a buffered channel; a client that cannot keep up is dropped.
// The send channel is never closed so a late Publish cannot panic; done
// stops both pumps instead.
type wsClient struct {
	conn *websocket.Conn
	send chan broadcast.Event
	done chan struct{}
}

func (c *wsClient) Send(event broadcast.Event) error {
	select {
	case <-c.done:
		return errors.New("client disconnected")
	case c.send <- event:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Serve upgrades the request and runs the read/write pumps until the client
// disconnects.
// @Summary      Live event stream
// @Tags         Events
// @Security     BearerAuth
// @Router       /api/ws [get]
func (h *WSHandler) Serve(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan broadcast.Event, sendBuffer),
		done: make(chan struct{}),
	}

	// Every client listens on its own user scope so notification hints
	// arrive without an explicit join.
	h.hub.Join(broadcast.UserScope(principal.ID), client)

	go h.writePump(client)
	h.readPump(c, client, principal)
}

func (h *WSHandler) readPump(c *gin.Context, client *wsClient, principal domain.Principal) {
	defer func() {
		h.hub.Disconnect(client)
		close(client.done)
		client.conn.Close()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg scopeMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}

		switch msg.Action {
		case "join":
			if err := h.authorizeScope(c, principal, msg.Scope); err != nil {
				client.Send(broadcast.Event{Scope: msg.Scope, Name: "error", Payload: err.Error()})
				continue
			}
			h.hub.Join(msg.Scope, client)
		case "leave":
			h.hub.Leave(msg.Scope, client)
		default:
			client.Send(broadcast.Event{Name: "error", Payload: "unknown action"})
		}
	}
}

func (h *WSHandler) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case <-client.done:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case event := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// authorizeScope applies the same access rules to scope joins that the REST
// surface applies to reads.
func (h *WSHandler) authorizeScope(c *gin.Context, principal domain.Principal, scope string) error {
	kind, raw, found := strings.Cut(scope, ":")
	if !found {
		return domain.InvalidInputf("invalid scope %q", scope)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return domain.InvalidInputf("invalid scope id %q", raw)
	}

	switch kind {
	case "project":
		_, err := h.workflows.GetProject(c.Request.Context(), principal, id)
		return err
	case "task":
		_, err := h.workflows.GetTask(c.Request.Context(), principal, id)
		return err
	case "user":
		if id != principal.ID && !principal.IsAdmin() {
			return domain.Forbiddenf("not authorized to listen on this user")
		}
		return nil
	default:
		return domain.InvalidInputf("unknown scope kind %q", kind)
	}
}
