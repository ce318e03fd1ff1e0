package commands

import (
	"errors"
	"strconv"
	"strings"
)

type Operation int

const (
	DEFAULT Operation = iota
	// Start mining, infinite loop until explicit cancel.
	START
	// Restart mining when new tail replace the tail we mine on.
	RESTART
	// Stop mining completely.
	STOP
	// Seal exactly one block from the transaction pool.
	MINE
	// Queue a transaction: transfer <id> <sender> <receiver> <amount>.
	TRANSFER
	// Seal one block that commits a raw string payload.
	POST
	// Re-verify the whole chain.
	VALIDATE
	// Show the blockchain.
	SHOW
	// Write a graph of the last blocks.
	GRAPH
)

// A command contains a operation and many arguments.
type Command struct {
	Op   Operation
	Args []string
}

func (c Command) IsValid() bool {
	switch c.Op {
	case START, RESTART, STOP, MINE, VALIDATE:
		return len(c.Args) == 0
	case TRANSFER:
		if len(c.Args) != 4 {
			return false
		}
		v, err := strconv.ParseFloat(c.Args[3], 64)
		return err == nil && v > 0
	case POST:
		return len(c.Args) > 0
	case SHOW, GRAPH:
		if len(c.Args) != 1 {
			return false
		}
		// depth must be a number.
		d, err := strconv.Atoi(c.Args[0])
		return err == nil && d >= 0
	default:
		return false
	}
}

// From string, create
func CreateCommand(s string) (Command, error) {
	// split command by space.
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return Command{}, errors.New("command is empty")
	}
	cmd := Command{}
	switch ss[0] {
	case "start":
		cmd.Op = START
	case "restart":
		cmd.Op = RESTART
	case "stop":
		cmd.Op = STOP
	case "mine":
		cmd.Op = MINE
	case "transfer":
		cmd.Op = TRANSFER
	case "post":
		cmd.Op = POST
	case "validate":
		cmd.Op = VALIDATE
	case "show":
		cmd.Op = SHOW
	case "graph":
		cmd.Op = GRAPH
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return Command{}, errors.New("invalid command")
	}
	return cmd, nil
}

// Create a brand new command with default operation.
func NewDefaultCommand() Command {
	return Command{
		Op: DEFAULT,
	}
}

func (c Command) IsDefault() bool {
	return c.Op == DEFAULT
}

// Payload joins the arguments of a post command back into one string.
func (c Command) Payload() string {
	return strings.Join(c.Args, " ")
}
