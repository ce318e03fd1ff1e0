package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/Luismorlan/mini_ledger/config"
	"github.com/Luismorlan/mini_ledger/full_node"
	"github.com/Luismorlan/mini_ledger/layout"
	"github.com/Luismorlan/mini_ledger/logging"
	"github.com/Luismorlan/mini_ledger/model"
	"github.com/jroimartin/gocui"
)

var (
	configPath *string
	debugMode  *bool
	bench      *bool
	graphDir   *string
)

func init() {
	configPath = flag.String("config_path", "full_node/cmd/config.yaml", "path to full node config")
	debugMode = flag.Bool("debug_mode", false, "Using debug mode will disable fancy GUI.")
	bench = flag.Bool("bench", false, "Compare mining and forging on fresh chains, then exit.")
	graphDir = flag.String("graph_dir", os.TempDir(), "where the graph command writes chain graphs")
}

// Parse command from stdio.
func ParseCommand(r io.Reader, cmd chan commands.Command) {
	reader := bufio.NewReader(r)
	for {
		fmt.Print("> ")
		text, err := reader.ReadString('\n')
		// convert CRLF to LF
		text = strings.Replace(text, "\n", "", -1)
		if text != "" {
			c, perr := commands.CreateCommand(text)
			if perr != nil {
				fmt.Println(perr)
			} else {
				cmd <- c
			}
		}
		if err != nil {
			close(cmd)
			return
		}
	}
}

// Return a gui handle if not in debug mode. The gui owns the terminal, so logs go to its logger view.
func ListenOnInput(cmd chan commands.Command, debugMode bool) (*gocui.Gui, io.Writer) {
	if debugMode {
		go ParseCommand(os.Stdin, cmd)
		return nil, os.Stdout
	}
	g, err := layout.CreateGui(cmd, "full_node/cmd/usage.txt")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	go func() {
		if err := g.MainLoop(); err != nil {
			g.Close()
			if err == gocui.ErrQuit {
				os.Exit(0)
			}
			os.Exit(1)
		}
	}()
	return g, layout.NewViewWriter(g, layout.LOGGER_VIEW)
}

// Dispatch commands to the node until cmd is closed. Mining runs in its own goroutine and
// is interrupted through ctl.
func HandleCommand(cmd chan commands.Command, node *full_node.FullNode, out io.Writer, log *slog.Logger) {
	// A separate control is needed to make sure cmd is non-blocking
	// when we just want to restart task.
	ctl := make(chan commands.Command, 1)
	var running atomic.Bool

	for c := range cmd {
		switch c.Op {
		case commands.START:
			if running.Load() {
				log.Warn("mining has already been started")
				continue
			}
			running.Store(true)
			// A signal relayed after the last mining task exited must not stop this one.
			drain(ctl)
			go func() {
				for {
					res, err := node.Mine(ctl)
					if err != nil {
						log.Error("mining failed", "err", err)
					}
					if res.Op == commands.STOP {
						drain(ctl)
						running.Store(false)
						return
					}
				}
			}()
		case commands.RESTART, commands.STOP:
			if !running.Load() {
				log.Warn("no running mining task to be restart or shut")
				continue
			}
			if !relay(ctl, c) {
				log.Warn("a control signal is already pending", "op", c.Op)
			}
		case commands.MINE:
			if _, err := node.Mine(nil); err != nil {
				log.Error("mining failed", "err", err)
			}
		case commands.TRANSFER:
			amount, _ := strconv.ParseFloat(c.Args[3], 64)
			tx := model.Transaction{Id: c.Args[0], Sender: c.Args[1], Receiver: c.Args[2], Amount: amount}
			if err := node.AddTransactionToPool(&tx); err != nil {
				log.Error("transfer rejected", "err", err)
			}
		case commands.POST:
			if _, err := node.PostData(c.Payload(), nil); err != nil {
				log.Error("post failed", "err", err)
			}
		case commands.VALIDATE:
			if err := node.Validate(); err != nil {
				fmt.Fprintln(out, "Chain valid: No,", err)
				continue
			}
			fmt.Fprintln(out, "Chain valid: Yes")
		case commands.SHOW:
			d, _ := strconv.Atoi(c.Args[0])
			if err := node.Show(d, out); err != nil {
				log.Error("show failed", "err", err)
			}
		case commands.GRAPH:
			d, _ := strconv.Atoi(c.Args[0])
			if _, err := node.Graph(d, *graphDir); err != nil {
				log.Error("graph failed", "err", err)
			}
		default:
			log.Warn("unrecognized command", "op", c.Op)
		}
	}
}

// Hand c to the mining task without blocking HandleCommand. Returns false when a signal
// is already pending.
func relay(ctl chan commands.Command, c commands.Command) bool {
	select {
	case ctl <- c:
		return true
	default:
		return false
	}
}

// Drop any pending control signal.
func drain(ctl chan commands.Command) {
	for {
		select {
		case <-ctl:
		default:
			return
		}
	}
}

func main() {
	flag.Parse()

	cfg, err := config.ParseAppConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logCfg := logging.Config{Level: cfg.LOG_LEVEL, Format: cfg.LOG_FORMAT}

	if *bench {
		log := logging.New(logCfg, os.Stderr)
		if err := RunBench(cfg, os.Stdout, log); err != nil {
			log.Error("benchmark failed", "err", err)
			os.Exit(1)
		}
		return
	}

	// A command channel that takes external input and hands it to the command loop.
	cmd := make(chan commands.Command)
	_, out := ListenOnInput(cmd, *debugMode)
	log := logging.New(logCfg, out)
	log.Info("config loaded", "consensus", cfg.CONSENSUS, "difficulty", cfg.DIFFICULTY, "merkle_mode", cfg.MerkleMode())

	node, err := full_node.NewFullNode(cfg, log)
	if err != nil {
		log.Error("failed to create full node", "err", err)
		os.Exit(1)
	}
	HandleCommand(cmd, node, out, log)
}
