package server

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// handleWatch upgrades to a websocket and streams a snapshot after every
// engine change. The initial snapshot is sent eagerly so a new client renders
// immediately without waiting for the next turn.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // same-origin policy is the renderer's concern
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer func() {
		_ = ws.Close(websocket.StatusNormalClosure, "watch ended")
	}()

	// CloseRead cancels the context when the client goes away.
	ctx := ws.CloseRead(r.Context())

	sub := s.subscribe()
	defer s.unsubscribe(sub)

	if err := wsjson.Write(ctx, ws, s.engine.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-sub:
			if err := wsjson.Write(ctx, ws, snap); err != nil {
				return
			}
		}
	}
}
