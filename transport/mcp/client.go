package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/dragon-caves-game/game/engine"
	"github.com/wricardo/dragon-caves-game/game/service"
	"go.uber.org/zap"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.Named("mcp"),
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Dragon Caves Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Dragon Caves Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk your dragon once around the ring of volcanoes and land exactly on your own cave.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Board, dragons, face-down chits and whose turn it is
- flip_card: Flip a face-down chit for the dragon whose turn it is - requires intent explanation
- preview_move: See where a card would take the current dragon without flipping anything
- reset_game: Start a new game with the same configuration
- move_history: View past flips
- list_configs: List available configurations
- game_instructions: Full rules
- describe_tile: Details about one tile of the ring

NOTE: The 'intent' parameter on flip_card serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, as listed by list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "flip_card",
		Description: "Flip a face-down chit card for the dragon whose turn it is",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"card": map[string]interface{}{
					"type":        "integer",
					"description": "Index of the face-down chit to flip (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why you picked this card (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before flipping",
				},
			},
			Required: []string{"session_id", "card"},
		},
	}, c.handleFlipCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "preview_move",
		Description: "Resolve a move for the current dragon without changing the game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"forward", "backward"},
					"description": "forward for a matching animal card, backward for a dragon pirate",
				},
				"step": map[string]interface{}{
					"type":        "integer",
					"description": "Number printed on the card (1-3)",
				},
			},
			Required: []string{"session_id", "direction", "step"},
		},
	}, c.handlePreviewMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get flip history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get detailed information about one tile of the ring: cave or volcano, its animal, owner and occupant",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Tile index on the ring (0-based, wraps around)",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleDescribeTile)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.GameOver {
			status = fmt.Sprintf("won by dragon %d", s.GameState.Winner)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleFlipCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)
	card, ok := intArg(args, "card")
	if !ok {
		return mcp.NewToolResultError("card must be an integer index"), nil
	}
	if intent, _ := args["intent"].(string); intent != "" {
		c.logger.Debug("flip intent", zap.String("session_id", sessionID), zap.Int("card", card), zap.String("intent", intent))
	}

	body := map[string]interface{}{
		"card":  card,
		"reset": reset,
	}

	var result service.FlipResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/flip"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFlipResult(&result)), nil
}

func (c *Client) handlePreviewMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	step, ok := intArg(args, "step")
	if !ok {
		return mcp.NewToolResultError("step must be an integer"), nil
	}

	body := map[string]interface{}{
		"direction": direction,
		"step":      step,
	}

	var result service.PreviewResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/preview"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPreview(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// the live state carries the flips since the last reset
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err == nil {
		result += "\n" + formatCurrentSegment(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Players: %d, Volcanoes: %d, Ring: %d tiles, Cave every %d tiles\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Players, config.Volcanoes, config.BoardLength, config.CaveDistance)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🐉 Dragon Caves Game - Complete Instructions

GAME OBJECTIVE:
Every dragon starts in its own cave on a ring of volcanoes. Be the first to walk all the
way around the ring and land EXACTLY on your own cave.

THE BOARD:
• The ring is made of volcanoes with a cave every few tiles (cave_distance)
• Every tile shows an animal: bat, baby_dragon, salamander or spider
• Cave k belongs to dragon k. Other dragons never stop on a cave that is not theirs
• A volcano holds at most one dragon

THE CHITS:
• 16 face-down chits: each animal with count 1, 2 and 3, plus 4 dragon pirates (two of 1, two of 2)
• On your turn flip any face-down chit
• Flipped chits stay face up until the turn ends, then every chit is turned face down again

RESOLVING A CHIT:
• Animal matches the tile your dragon stands on: move forward by the count
• Animal does not match: your turn ends
• Dragon pirate: move backward by the count, even if you are not on a matching tile
• Dragon pirate while sitting in your own cave: nothing happens and you keep flipping

FORWARD MOVES:
• Landing exactly on your own cave wins the game
• Running past your own cave: you stay where you are and the turn ends
• Passing or landing on another dragon's cave: you are pushed one tile further

BACKWARD MOVES:
• Passing back over another dragon's cave: one extra tile backward
• Passing back over your own cave: you go home to it

BUMPING:
• Landing on an occupied volcano pushes that dragon backward to the nearest free volcano

MOVEMENT COMMANDS:
• flip_card {session_id, card, intent}: flip chit number "card"
• preview_move {session_id, direction, step}: ask where a chit would take you first
• game_state: read the ring, the dragons and which chits are still face down

STRATEGY TIPS:
• Face-up chits from earlier in your turn tell you which animals are gone
• Use preview_move before gambling on a pirate near your cave
• Count tiles: distance_home in game_state shows how far your cave is

VICTORY CONDITIONS:
• A dragon lands exactly on its own cave; the game is over and the winner is recorded

Good luck bringing your dragon home! 🌋`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	index, ok := intArg(args, "index")
	if !ok {
		return mcp.NewToolResultError("index must be an integer"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	board, err := engine.RestoreBoard(state.Tiles, state.CaveDistance)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeTile(board, &state, board.Index(index))), nil
}

func describeTile(board *engine.Board, state *engine.GameState, index int) string {
	tile := board.TileAt(index)

	var b strings.Builder
	fmt.Fprintf(&b, "Tile %d of %d:\n━━━━━━━━━━━━━━━━━━━━━━━━\n", index, board.Len())
	fmt.Fprintf(&b, "Kind: %s\nAnimal: %s\n", tile.Kind, tile.Animal)

	if owner, ok := tile.OwnerID(); ok {
		fmt.Fprintf(&b, "Owner: dragon %d\n", owner)
		for _, d := range state.Dragons {
			if d.ID == owner && d.Position == index {
				fmt.Fprintf(&b, "Dragon %d is at home here\n", owner)
			}
		}
		b.WriteString("Only its owner may stop here; other dragons are pushed past it.\n")
	} else if occupant, ok := tile.OccupantID(); ok {
		fmt.Fprintf(&b, "Occupant: dragon %d\n", occupant)
		b.WriteString("A dragon landing here bumps the occupant back to the nearest free volcano.\n")
	} else {
		b.WriteString("Occupant: none\n")
	}

	for _, d := range state.Dragons {
		if d.Seat == state.CurrentPlayer {
			steps := board.Index(index - d.Position)
			fmt.Fprintf(&b, "Current dragon %d is %d tiles behind this tile\n", d.ID, steps)
		}
	}
	return b.String()
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast Accessed: %s\n\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339),
		session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		result += formatGameState(session.GameState)
	}
	return result
}

func tileLabel(tile engine.Tile) string {
	if owner, ok := tile.OwnerID(); ok {
		return fmt.Sprintf("C%d:%s", owner, tile.Animal)
	}
	if occupant, ok := tile.OccupantID(); ok {
		return fmt.Sprintf("D%d:%s", occupant, tile.Animal)
	}
	return string(tile.Animal)
}

func chitLabel(i int, card engine.ChitCard) string {
	if !card.Revealed {
		return fmt.Sprintf("#%d ?", i)
	}
	return fmt.Sprintf("#%d %s×%d", i, card.Animal, card.Count)
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "Game state unavailable"
	}

	var b strings.Builder
	b.WriteString("Game State:\n")
	switch {
	case state.GameOver:
		fmt.Fprintf(&b, "🏆 GAME OVER - Dragon %d wins\n", state.Winner)
	default:
		fmt.Fprintf(&b, "Turn %d - seat %d to flip (%d chits revealed)\n",
			state.TurnNumber, state.CurrentPlayer, state.CardsRevealed)
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	board, err := engine.RestoreBoard(state.Tiles, state.CaveDistance)
	if err == nil {
		fmt.Fprintf(&b, "\nRing (%d tiles, cave every %d):\n", board.Len(), board.CaveDistance())
		for i := 0; i < board.Len(); i++ {
			if i > 0 && i%board.CaveDistance() == 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "[%d %s] ", i, tileLabel(board.TileAt(i)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nDragons:\n")
	for _, d := range state.Dragons {
		marker := " "
		if d.Seat == state.CurrentPlayer && !state.GameOver {
			marker = "▶"
		}
		line := fmt.Sprintf("%s Dragon %d (seat %d) on tile %d", marker, d.ID, d.Seat, d.Position)
		if board != nil {
			line += fmt.Sprintf(", standing on %s, distance_home %d",
				board.TileAt(d.Position).Animal, engine.DistanceHome(board, d))
		}
		b.WriteString(line + "\n")
	}

	if len(state.Chits) > 0 {
		labels := make([]string, len(state.Chits))
		for i, card := range state.Chits {
			labels[i] = chitLabel(i, card)
		}
		fmt.Fprintf(&b, "\nChits: %s\n", strings.Join(labels, "  "))
	}

	return b.String()
}

func formatFlipResult(result *service.FlipResult) string {
	var b strings.Builder
	if f := result.Flip; f != nil {
		fmt.Fprintf(&b, "Flipped chit #%d: %s×%d for dragon %d\n", f.CardIndex, f.Card.Animal, f.Card.Count, f.Player)
		switch {
		case f.GameOver:
			fmt.Fprintf(&b, "🏆 Dragon %d is home and wins!\n", f.Player)
		case f.Mismatch:
			b.WriteString("✗ Animal does not match the tile - turn over\n")
		case f.Outcome.Moved:
			fmt.Fprintf(&b, "✓ Moved from tile %d to tile %d\n", f.Outcome.From, f.Outcome.To)
		default:
			fmt.Fprintf(&b, "• Stayed on tile %d\n", f.Outcome.From)
		}
		if f.Outcome.Bumped {
			fmt.Fprintf(&b, "Bumped dragon %d back to tile %d\n", f.Outcome.BumpedID, f.Outcome.BumpedTo)
		}
		if f.TurnEnded && !f.GameOver {
			fmt.Fprintf(&b, "Turn ended - seat %d flips next\n", f.NextPlayer)
		}
	} else if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatPreview(result *service.PreviewResult) string {
	var b strings.Builder
	r := result.Resolution
	fmt.Fprintf(&b, "Preview: %s %d for dragon %d on tile %d\n", r.Direction, r.Step, result.Dragon.ID, result.Dragon.Position)
	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	if r.HasDestination && result.DestinationTile != nil {
		fmt.Fprintf(&b, "Destination: tile %d (%s %s)\n", r.Destination, result.DestinationTile.Kind, result.DestinationTile.Animal)
	}
	if r.TurnEnds {
		b.WriteString("This would end the turn\n")
	}
	if r.GameEnds {
		b.WriteString("This would win the game\n")
	}
	return b.String()
}

func formatHistoryEntry(num int, move engine.MoveHistoryEntry) string {
	status := "✓"
	detail := fmt.Sprintf("%d→%d", move.Outcome.From, move.Outcome.To)
	switch {
	case move.Mismatch:
		status = "✗"
		detail = "mismatch"
	case move.Outcome.GameEnds:
		status = "🏆"
	case !move.Outcome.Moved:
		status = "•"
		detail = fmt.Sprintf("stayed on %d", move.Outcome.From)
	}
	line := fmt.Sprintf("%d. [turn %d] dragon %d flipped %s×%d %s %s",
		num, move.Turn, move.Player, move.Card.Animal, move.Card.Count, status, detail)
	if move.Outcome.Bumped {
		line += fmt.Sprintf(" (bumped dragon %d to %d)", move.Outcome.BumpedID, move.Outcome.BumpedTo)
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Flip History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)
	for _, move := range history.Moves {
		b.WriteString(formatHistoryEntry(move.MoveNumber, move))
	}
	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Game: unavailable"
	}
	header := fmt.Sprintf("Current Game - Flips: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no flips since the last reset)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		b.WriteString(formatHistoryEntry(i+1, move))
	}
	return b.String()
}
