package layout

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Luismorlan/mini_ledger/commands"
	"github.com/jroimartin/gocui"
)

const (
	PAST_CMD_VIEW = "pastcommand"
	INPUT_VIEW    = "input"
	LOGGER_VIEW   = "logger"
	MANUAL_VIEW   = "manual"
)

// The last line typed into the input box, waiting to be echoed into the past command view.
type lastCmd struct {
	str   string
	ready bool
	m     sync.RWMutex
}

// PastCmd is the ViewManager that logs past command.
type PastCmd struct {
	name string
	last *lastCmd
}

// Input box for command.
type Input struct {
	name string
	cmd  chan commands.Command
	last *lastCmd
}

type Logger struct {
	name string
}

type Manual struct {
	name string
	text string
}

func (pc *PastCmd) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom left corner.
	v, err := g.SetView(pc.name, 1, maxY*2/3, maxX/3, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true

	pc.last.m.Lock()
	defer pc.last.m.Unlock()
	if pc.last.ready {
		fmt.Fprintln(v, "> "+pc.last.str)
	}
	pc.last.ready = false

	return nil
}

func (i *Input) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom, full width.
	v, err := g.SetView(i.name, 1, maxY-5, maxX-1, maxY-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Autoscroll = true
	v.Editor = i
	v.Editable = true
	return nil
}

func (l *Logger) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Right side.
	v, err := g.SetView(l.name, maxX/3+1, 1, maxX-1, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true
	return nil
}

func (m *Manual) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Top left corner.
	v, err := g.SetView(m.name, 1, 1, maxX/3, maxY*2/3-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Clear()
	fmt.Fprintln(v, m.text)
	return nil
}

// Submit parses one input line, records it for the past command view and forwards
// a valid command. It returns false if the line was rejected.
func (i *Input) Submit(s string) bool {
	// Remove \n from string.
	s = strings.Replace(s, "\n", "", -1)
	op, err := commands.CreateCommand(s)
	i.last.m.Lock()
	i.last.str = s
	if err != nil {
		i.last.str = s + "\n" + err.Error()
	}
	i.last.ready = true
	i.last.m.Unlock()
	if err != nil {
		return false
	}
	// If a valid command, send to fullnode for processing.
	i.cmd <- op
	return true
}

func (i *Input) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyEnter:
		// Read buffer.
		s := v.Buffer()
		// The command channel may block while the node is busy.
		go i.Submit(s)

		// Reset cursor.
		v.Clear()
		v.SetOrigin(0, 0)
		v.SetCursor(0, 0)

	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	}
}

func SetFocus(name string) func(g *gocui.Gui) error {
	return func(g *gocui.Gui) error {
		_, err := g.SetCurrentView(name)
		return err
	}
}

// ViewWriter appends everything written to it into a view. Writes are queued on the gui
// loop, so it is safe to use from any goroutine, for example as the log output.
type ViewWriter struct {
	g    *gocui.Gui
	name string
}

func NewViewWriter(g *gocui.Gui, name string) *ViewWriter {
	return &ViewWriter{g: g, name: name}
}

func (w *ViewWriter) Write(p []byte) (int, error) {
	s := string(p)
	w.g.Update(func(g *gocui.Gui) error {
		v, err := g.View(w.name)
		if err != nil {
			// View not laid out yet, drop the line.
			return nil
		}
		fmt.Fprint(v, s)
		return nil
	})
	return len(p), nil
}

// Create a GUI, using the command channel to pass command to fullnode. The manual
// view shows the file at manualPath.
func CreateGui(cmd chan commands.Command, manualPath string) (*gocui.Gui, error) {
	dat, err := os.ReadFile(manualPath)
	if err != nil {
		return nil, err
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}

	g.Cursor = true

	last := &lastCmd{}
	pc := &PastCmd{name: PAST_CMD_VIEW, last: last}
	input := &Input{name: INPUT_VIEW, cmd: cmd, last: last}
	l := &Logger{name: LOGGER_VIEW}
	m := &Manual{name: MANUAL_VIEW, text: string(dat)}
	focus := gocui.ManagerFunc(SetFocus(INPUT_VIEW))
	g.SetManager(pc, input, l, m, focus)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		g.Close()
		return nil, err
	}

	return g, nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
