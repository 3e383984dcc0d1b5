package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/k1300k/smart-stocks/internal/feature/mindmap/domain"
	"github.com/k1300k/smart-stocks/internal/feature/mindmap/simulation"
	jwtmw "github.com/k1300k/smart-stocks/internal/platform/jwt"
)

// Layout frames stream at ~30fps.
const tickInterval = 33 * time.Millisecond

// Client zoom must stay inside these bounds.
const (
	minScale = 0.1
	maxScale = 4
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// clientMessage is any command a client sends over the live socket.
type clientMessage struct {
	Type  string  `json:"type"`
	ID    string  `json:"id,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Scale float64 `json:"scale,omitempty"`
}

type tickMessage struct {
	Type  string                `json:"type"`
	Nodes []simulation.Position `json:"nodes"`
}

type detailMessage struct {
	Type     string       `json:"type"`
	Node     *domain.Node `json:"node"`
	Children []string     `json:"children"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// liveSession couples one websocket connection to one running simulation.
type liveSession struct {
	conn *websocket.Conn
	tree *domain.Node
	sim  *simulation.Simulation
	out  chan any
	done chan struct{}
}

// Live runs an interactive mind-map session. The server drives the tick
// loop, streaming node positions while the layout is hot; the client sends
// drag, pin, select, and viewport commands.
// GET /api/mindmap/live?view=&width=&height=
func (h *MindmapHandler) Live(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)
	view := domain.ParseViewMode(c.Query("view"))
	opts := simulation.Options{
		Width:  floatQuery(c, "width", defaultViewportWidth),
		Height: floatQuery(c, "height", defaultViewportHeight),
	}

	tree, sim, err := h.usecase.NewSimulation(c.Request.Context(), userID, view, opts)
	if err != nil {
		slog.Error("live mindmap setup failed", "user_id", userID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := &liveSession{
		conn: conn,
		tree: tree,
		sim:  sim,
		out:  make(chan any, 64),
		done: make(chan struct{}),
	}

	go s.writeLoop()
	go s.readLoop()
	s.tickLoop()

	sim.Stop()
	conn.Close()
}

// tickLoop advances the simulation and pushes position frames until the
// socket closes. Frames pause while the layout is settled.
func (s *liveSession) tickLoop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.sim.Settled() {
				continue
			}
			s.sim.Step()
			s.send(tickMessage{Type: "tick", Nodes: s.sim.Positions()})
		}
	}
}

func (s *liveSession) writeLoop() {
	ping := time.NewTicker(45 * time.Second)
	defer ping.Stop()

	for {
		select {
		case v := <-s.out:
			if err := s.conn.WriteJSON(v); err != nil {
				return
			}
		case <-ping.C:
			_ = s.conn.WriteMessage(websocket.PingMessage, nil)
		case <-s.done:
			return
		}
	}
}

func (s *liveSession) readLoop() {
	defer close(s.done)

	for {
		var msg clientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handle(msg)
	}
}

func (s *liveSession) handle(msg clientMessage) {
	switch msg.Type {
	case "dragstart":
		s.sim.DragStart(msg.ID)
	case "drag":
		s.sim.Drag(msg.ID, msg.X, msg.Y)
	case "dragend":
		s.sim.DragEnd(msg.ID)
	case "pin":
		s.sim.Pin(msg.ID, msg.X, msg.Y)
	case "unpin":
		s.sim.Unpin(msg.ID)
	case "select":
		s.sendDetail(msg.ID)
	case "viewport":
		if msg.Scale < minScale || msg.Scale > maxScale {
			s.send(errorMessage{Type: "error", Error: "scale out of bounds"})
		}
	default:
		s.send(errorMessage{Type: "error", Error: "unknown message type"})
	}
}

// sendDetail answers a select with the node's figures and child ids.
func (s *liveSession) sendDetail(id string) {
	node := s.tree.Find(id)
	if node == nil {
		s.send(errorMessage{Type: "error", Error: "unknown node"})
		return
	}

	children := make([]string, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, child.ID)
	}

	detail := *node
	detail.Children = nil
	s.send(detailMessage{Type: "detail", Node: &detail, Children: children})
}

// send queues a message, dropping the frame if the client cannot keep up.
func (s *liveSession) send(v any) {
	select {
	case s.out <- v:
	case <-s.done:
	default:
	}
}
