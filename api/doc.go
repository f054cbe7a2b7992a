// Package api provides the HTTP REST API for the Dragon Caves Game.
//
// Endpoints (all under /api):
//
// Sessions:
//   - POST   /sessions                 create a session, body {"config_id": "classic"}
//   - GET    /sessions                 list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /sessions/unified         several sessions at once (?sessionIds=a,b or ?configName=duo)
//   - GET    /sessions/{id}            session info with public game state
//   - DELETE /sessions/{id}            delete a session
//
// Game:
//   - GET    /sessions/{id}/state      public game state
//   - POST   /sessions/{id}/flip       flip a chit, body {"card": 3, "reset": false}
//   - POST   /sessions/{id}/preview    resolve without moving, body {"direction": "forward", "step": 2}
//   - POST   /sessions/{id}/reset      start a new game with the same config
//   - GET    /sessions/{id}/history    paginated flips (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET    /configs                  list board configurations
//   - GET    /configs/{name}           a single configuration
//   - POST   /configs                  validate and save a configuration
//
// Live updates are served on /ws?session=<id>; every flip and reset pushes a
// state_update message to the watchers of that session.
//
// Errors are JSON objects of the form {"error": "...", "code": 409}. Unknown
// sessions and configs map to 404, malformed input and out-of-range cards to
// 400, flips on a finished game or an already revealed card to 409.
package api
