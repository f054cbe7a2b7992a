package engine

import "errors"

var (
	ErrInvalidPlayerCount = errors.New("player count must be between 2 and 4")
	ErrInvalidBoardSize   = errors.New("invalid board size")
	ErrInvalidStep        = errors.New("step must be positive")
	ErrNoFreeVolcano      = errors.New("no free volcano to receive a bumped dragon")
	ErrUnknownDragon      = errors.New("unknown dragon")
	ErrGameOver           = errors.New("game is over")
	ErrInvalidCard        = errors.New("invalid chit card index")
	ErrCardRevealed       = errors.New("chit card already revealed")
	ErrInvalidState       = errors.New("invalid game state")
)
