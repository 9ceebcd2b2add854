// Package shell is an interactive console for playing Othello against the
// engine and inspecting its search.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/hailam/othello/internal/board"
	"github.com/hailam/othello/internal/config"
	"github.com/hailam/othello/internal/engine"
	"github.com/hailam/othello/internal/render"
	"github.com/hailam/othello/internal/storage"
)

var errQuit = errors.New("quit")

// Response is the text a command prints.
type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

// String returns the response text.
func (r *Response) String() string {
	if r == nil {
		return ""
	}
	return r.message
}

type shellcmd struct {
	cmd  string
	args []string
}

// played is one transcript entry.
type played struct {
	move board.Move
	side board.Side
}

// Shell holds one interactive game. The engine plays the side the human
// does not.
type Shell struct {
	cfg   *config.Config
	opts  engine.Options
	store *storage.Storage
	out   io.Writer
	l     *readline.Instance

	eng        *engine.Engine
	human      board.Side
	turn       board.Side
	transcript []played
	started    time.Time
	recorded   bool
}

// New creates a shell writing to out. store may be nil, which disables
// game records and stats.
func New(cfg *config.Config, store *storage.Storage, out io.Writer) (*Shell, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	sh := &Shell{cfg: cfg, opts: opts, store: store, out: out}

	human := board.Black
	if store != nil {
		prefs, err := store.LoadPreferences()
		if err != nil {
			return nil, fmt.Errorf("load preferences: %w", err)
		}
		if s, ok := board.ParseSide(prefs.PlayerSide); ok {
			human = s
		}
	}
	sh.newGame(human)
	return sh, nil
}

func (sh *Shell) newGame(human board.Side) {
	sh.human = human
	sh.turn = board.Black
	sh.eng = engine.NewEngine(human.Other(), sh.opts)
	sh.transcript = nil
	sh.started = time.Now()
	sh.recorded = false
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("new", readline.PcItem("black"), readline.PcItem("white")),
	readline.PcItem("show"),
	readline.PcItem("moves"),
	readline.PcItem("play"),
	readline.PcItem("go"),
	readline.PcItem("search",
		readline.PcItem("minimax"), readline.PcItem("alphabeta"), readline.PcItem("negascout")),
	readline.PcItem("eval"),
	readline.PcItem("load"),
	readline.PcItem("probe"),
	readline.PcItem("undo"),
	readline.PcItem("render"),
	readline.PcItem("stats"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

// Run reads commands until quit or end of input.
func (sh *Shell) Run() error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mothello>\033[0m ",
		HistoryFile:     historyFile(),
		AutoComplete:    completer,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer l.Close()
	sh.l = l
	sh.out = l.Stdout()

	sh.show(msg(sh.eng.Position().String()))
	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		} else if errors.Is(err, io.EOF) {
			break
		}

		resp, err := sh.Execute(line)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sh.showError(err)
			continue
		}
		sh.show(resp)
	}
	log.Debug().Msg("exiting readline loop")
	return nil
}

func historyFile() string {
	dir, err := storage.GetDataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func (sh *Shell) show(r *Response) {
	if s := r.String(); s != "" {
		io.WriteString(sh.out, s)
		if !strings.HasSuffix(s, "\n") {
			io.WriteString(sh.out, "\n")
		}
	}
}

func (sh *Shell) showError(err error) {
	sh.show(msg("Error: " + err.Error()))
}

// Execute runs one command line.
func (sh *Shell) Execute(line string) (*Response, error) {
	fields, err := shellquote.Split(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	cmd := &shellcmd{cmd: strings.ToLower(fields[0]), args: fields[1:]}

	switch cmd.cmd {
	case "new":
		return sh.cmdNew(cmd)
	case "show", "s":
		return sh.cmdShow()
	case "moves":
		return sh.cmdMoves()
	case "play", "p":
		return sh.cmdPlay(cmd)
	case "go":
		return sh.cmdGo()
	case "search":
		return sh.cmdSearch(cmd)
	case "eval":
		return sh.cmdEval()
	case "load":
		return sh.cmdLoad(cmd)
	case "probe":
		return sh.cmdProbe()
	case "undo":
		return sh.cmdUndo()
	case "render":
		return sh.cmdRender(cmd)
	case "stats":
		return sh.cmdStats()
	case "help", "?":
		return msg(usage), nil
	case "quit", "exit":
		return nil, errQuit
	}
	return nil, fmt.Errorf("unknown command %q, try help", cmd.cmd)
}

const usage = `commands:
new [black|white]       - start a new game, playing the given side
show                    - print the board
moves                   - list legal moves for the side to move
play <square|pass>      - play a move, e.g. play d3
go                      - let the engine move
search <algo> <depth>   - search without playing (minimax, alphabeta, negascout)
eval                    - static evaluation from the engine's side
load <64 symbols> [side]- set up a board (b, w, anything else empty)
probe                   - look the position up in the transposition cache
undo                    - take back your last move and the engine's reply
render <file.png>       - save the board as a PNG
stats                   - recorded game statistics
quit                    - leave`

func (sh *Shell) cmdNew(cmd *shellcmd) (*Response, error) {
	human := sh.human
	if len(cmd.args) > 0 {
		s, ok := board.ParseSide(cmd.args[0])
		if !ok {
			return nil, fmt.Errorf("unknown side %q", cmd.args[0])
		}
		human = s
	}
	sh.newGame(human)

	if sh.store != nil {
		prefs, err := sh.store.LoadPreferences()
		if err != nil {
			return nil, err
		}
		prefs.PlayerSide = human.String()
		prefs.Algorithm = sh.opts.Algorithm.String()
		if err := sh.store.SavePreferences(prefs); err != nil {
			return nil, err
		}
	}
	return sh.cmdShow()
}

func (sh *Shell) cmdShow() (*Response, error) {
	pos := sh.eng.Position()
	var sb strings.Builder
	sb.WriteString(pos.String())
	if pos.IsDone() {
		sb.WriteString("game over: " + storage.WinnerOf(pos.CountBlack(), pos.CountWhite()))
	} else {
		fmt.Fprintf(&sb, "%s to move", sh.turn)
		if sh.turn == sh.human {
			sb.WriteString(" (you)")
		}
	}
	return msg(sb.String()), nil
}

func (sh *Shell) cmdMoves() (*Response, error) {
	moves := sh.eng.Position().GenerateLegalMoves(sh.turn)
	if moves.Len() == 0 {
		return msg(sh.turn.String() + ": pass"), nil
	}
	names := make([]string, 0, moves.Len())
	for _, m := range moves.Slice() {
		names = append(names, m.String())
	}
	return msg(sh.turn.String() + ": " + strings.Join(names, " ")), nil
}

// apply plays m for the side to move and advances the turn.
func (sh *Shell) apply(m board.Move) error {
	if !sh.eng.ApplyMove(m, sh.turn) {
		return fmt.Errorf("%s is not legal for %s", m, sh.turn)
	}
	sh.transcript = append(sh.transcript, played{move: m, side: sh.turn})
	sh.turn = sh.turn.Other()
	return sh.recordIfDone()
}

func (sh *Shell) cmdPlay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <square|pass>")
	}
	if sh.turn != sh.human {
		return nil, errors.New("it is the engine's turn, use go")
	}
	m, err := board.ParseMove(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sh.apply(m); err != nil {
		return nil, err
	}
	return sh.cmdShow()
}

func (sh *Shell) cmdGo() (*Response, error) {
	if sh.turn == sh.human {
		return nil, errors.New("it is your turn")
	}
	if sh.eng.Position().IsDone() {
		return nil, errors.New("the game is over")
	}

	var last engine.SearchInfo
	sh.eng.OnInfo = func(info engine.SearchInfo) { last = info }
	m := sh.eng.Think(-1)
	sh.eng.OnInfo = nil

	if err := sh.apply(m); err != nil {
		return nil, err
	}
	resp, _ := sh.cmdShow()
	header := fmt.Sprintf("engine plays %s", m)
	if last.Depth > 0 {
		header += fmt.Sprintf(" (depth %d, score %d, %d nodes, %s)", last.Depth, last.Score, last.Nodes, last.Time.Round(time.Millisecond))
	}
	return msg(header + "\n" + resp.message), nil
}

func (sh *Shell) cmdSearch(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: search <algo> <depth>")
	}
	algo, err := engine.ParseAlgorithm(cmd.args[0])
	if err != nil {
		return nil, err
	}
	depth, err := strconv.Atoi(cmd.args[1])
	if err != nil || depth < 0 {
		return nil, fmt.Errorf("bad depth %q", cmd.args[1])
	}

	s := engine.NewSearcher(sh.eng.Position(), sh.opts.Eval, sh.eng.Cache())
	s.SetCeiling(sh.cfg.Search.Ceiling)
	start := time.Now()
	m, score := s.Search(algo, depth, sh.turn)
	elapsed := time.Since(start)

	if m == board.TimedOut {
		return msg(fmt.Sprintf("%s depth %d timed out after %s", algo, depth, elapsed.Round(time.Millisecond))), nil
	}
	return msg(fmt.Sprintf("%s depth %d: %s score %d (%d nodes, %s)",
		algo, depth, m, score, s.Nodes(), elapsed.Round(time.Millisecond))), nil
}

func (sh *Shell) cmdEval() (*Response, error) {
	pos := sh.eng.Position()
	myMoves, oppMoves, myFrontier, oppFrontier := engine.MobilityAndFrontier(pos)
	return msg(fmt.Sprintf("%s: positional %d, material %d, mobility %d/%d, frontier %d/%d, stability %d/%d",
		pos.MySelf, sh.eng.Evaluate(), engine.MaterialScore(pos),
		myMoves, oppMoves, myFrontier, oppFrontier,
		engine.Stability(pos, pos.MySelf), engine.Stability(pos, pos.Opponent))), nil
}

func (sh *Shell) cmdLoad(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 1 || len(cmd.args) > 2 {
		return nil, errors.New("usage: load <64 symbols> [side to move]")
	}
	turn := board.Black
	if len(cmd.args) == 2 {
		s, ok := board.ParseSide(cmd.args[1])
		if !ok {
			return nil, fmt.Errorf("unknown side %q", cmd.args[1])
		}
		turn = s
	}
	sh.eng.Load(cmd.args[0])
	sh.turn = turn
	sh.transcript = nil
	// Loaded boards are not real games.
	sh.recorded = true
	return sh.cmdShow()
}

func (sh *Shell) cmdProbe() (*Response, error) {
	cache := sh.eng.Cache()
	fp := sh.eng.Position().Fingerprint()
	e, ok := cache.Lookup(fp)
	st := cache.Stats()
	summary := fmt.Sprintf("cache: %d entries, %.1f%% hits, %d evictions, %d drops (%s)",
		st.Entries, cache.HitRate(), st.Evictions, st.Drops, cache.Policy().Name())
	if !ok {
		return msg("miss\n" + summary), nil
	}
	return msg(fmt.Sprintf("hit: move %s score %d popularity %d\n%s", e.Move, e.Score, e.Popularity, summary)), nil
}

// cmdUndo pops transcript entries back to and including the human's last
// move. Weight changes from corner captures stay.
func (sh *Shell) cmdUndo() (*Response, error) {
	idx := -1
	for i := len(sh.transcript) - 1; i >= 0; i-- {
		if sh.transcript[i].side == sh.human {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.New("nothing to undo")
	}
	for len(sh.transcript) > idx {
		p := sh.transcript[len(sh.transcript)-1]
		sh.transcript = sh.transcript[:len(sh.transcript)-1]
		if p.move.IsSquare() {
			sh.eng.Undo()
		}
		sh.turn = p.side
	}
	return sh.cmdShow()
}

func (sh *Shell) cmdRender(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: render <file.png>")
	}
	opts := render.DefaultOptions()
	opts.ShowMoves = true
	opts.MovesFor = sh.turn
	if n := len(sh.transcript); n > 0 {
		opts.LastMove = sh.transcript[n-1].move
	}
	if err := writePNG(cmd.args[0], sh.eng.Position(), opts); err != nil {
		return nil, err
	}
	return msg("wrote " + cmd.args[0]), nil
}

// writePNG renders pos into a temporary file next to path and renames it
// into place, so a failed render never leaves a partial image behind.
func writePNG(path string, pos *board.Position, opts render.Options) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if err = render.PNG(f, pos, opts); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

func (sh *Shell) cmdStats() (*Response, error) {
	if sh.store == nil {
		return nil, errors.New("no game store configured")
	}
	st, err := sh.store.LoadStats()
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "games %d: black %d, white %d, draws %d (black wins %.1f%%, %.1f discs on average)",
		st.GamesPlayed, st.BlackWins, st.WhiteWins, st.Draws, st.BlackWinRate(), st.AverageDiscs())
	for name, wins := range st.WinsByPlayer {
		fmt.Fprintf(&sb, "\n  %s: %d wins", name, wins)
	}
	return msg(sb.String()), nil
}

// recordIfDone stores a finished game once.
func (sh *Shell) recordIfDone() error {
	pos := sh.eng.Position()
	if sh.recorded || !pos.IsDone() {
		return nil
	}
	sh.recorded = true
	if sh.store == nil {
		return nil
	}

	rec := storage.GameRecord{
		BlackDiscs: pos.CountBlack(),
		WhiteDiscs: pos.CountWhite(),
		Duration:   time.Since(sh.started),
	}
	for _, p := range sh.transcript {
		rec.Moves = append(rec.Moves, p.move.String())
	}
	rec.Black, rec.White = "human", sh.opts.Algorithm.String()
	if sh.human == board.White {
		rec.Black, rec.White = rec.White, rec.Black
	}
	id, err := sh.store.RecordGame(rec)
	if err != nil {
		return err
	}
	log.Info().Str("id", id).Msg("game recorded")
	return nil
}

// Turn returns the side to move.
func (sh *Shell) Turn() board.Side {
	return sh.turn
}

// Engine returns the engine playing against the human.
func (sh *Shell) Engine() *engine.Engine {
	return sh.eng
}
