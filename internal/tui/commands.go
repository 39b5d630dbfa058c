package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/unoduel/internal/deck"
)

// CommandKind identifies a line typed at the prompt.
type CommandKind int

const (
	CmdCreate CommandKind = iota + 1
	CmdJoin
	CmdStart
	CmdPlay
	CmdDraw
	CmdEnd
	CmdName
	CmdHelp
	CmdQuit
)

// Command is a parsed prompt line. Index is zero-based.
type Command struct {
	Kind  CommandKind
	Code  string
	Index int
	Color deck.Color
	Name  string
}

var errEmptyCommand = errors.New("empty command")

const helpText = "create | join CODE | start | play N [red|blue|green|yellow] | draw | end | name NAME | quit"

// ParseCommand parses a prompt line. Cards are numbered from 1 as shown in
// the hand.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errEmptyCommand
	}

	verb, args := strings.ToLower(fields[0]), fields[1:]
	switch verb {
	case "create", "new":
		return Command{Kind: CmdCreate}, nil

	case "join":
		if len(args) != 1 {
			return Command{}, errors.New("usage: join CODE")
		}
		return Command{Kind: CmdJoin, Code: args[0]}, nil

	case "start":
		return Command{Kind: CmdStart}, nil

	case "play", "p":
		if len(args) < 1 || len(args) > 2 {
			return Command{}, errors.New("usage: play N [color]")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Command{}, fmt.Errorf("invalid card number: %q", args[0])
		}
		cmd := Command{Kind: CmdPlay, Index: n - 1}
		if len(args) == 2 {
			color, err := deck.ParseColor(args[1])
			if err != nil {
				return Command{}, err
			}
			cmd.Color = color
		}
		return cmd, nil

	case "draw", "d":
		return Command{Kind: CmdDraw}, nil

	case "end", "pass":
		return Command{Kind: CmdEnd}, nil

	case "name":
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		if name == "" {
			return Command{}, errors.New("usage: name NAME")
		}
		return Command{Kind: CmdName, Name: name}, nil

	case "help", "?":
		return Command{Kind: CmdHelp}, nil

	case "quit", "exit", "q":
		return Command{Kind: CmdQuit}, nil

	default:
		return Command{}, fmt.Errorf("unknown command %q, try: %s", verb, helpText)
	}
}
