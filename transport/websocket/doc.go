// Package websocket pushes live game updates to browser clients.
//
// A single Hub goroutine owns every connection, grouped by session ID.
// Clients join with /ws?session=<id>; after each flip or reset the API
// calls BroadcastToSession and every watcher of that session receives a
// state_update message:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Face-down chits are blanked in broadcast states the same way they are in
// REST responses. Custom events (flip, session_deleted) travel through
// BroadcastEvent with an arbitrary data payload.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run()
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Clients that cannot keep up with their send buffer are dropped.
package websocket
