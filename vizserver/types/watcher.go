package types

import (
	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"
)

// Watcher is one connected viz client.
type Watcher struct {
	id   string
	conn *websocket.Conn
}

func NewWatcher(conn *websocket.Conn) *Watcher {
	return &Watcher{
		id:   uuid.NewV4().String(),
		conn: conn,
	}
}

func (w *Watcher) GetId() string {
	return w.id
}

func (w *Watcher) GetConn() *websocket.Conn {
	return w.conn
}
