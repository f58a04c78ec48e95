// Package engine drives a UCI chess engine subprocess such as stockfish.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const DefaultPath = "stockfish"

var ErrClosed = errors.New("engine closed unexpectedly")

type UCI struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	mu    sync.Mutex
}

type SearchResult struct {
	BestMove string
	Score    int
	Depth    int
	IsMate   bool
	MateIn   int
}

// New starts the engine at path and completes the uci/isready handshake
func New(path string) (*UCI, error) {
	if path == "" {
		path = DefaultPath
	}
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err = cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start engine %s", path)
	}

	uci := &UCI{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 64),
	}
	go uci.readLoop(stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := uci.initialize(ctx); err != nil {
		uci.Close()
		return nil, err
	}

	return uci, nil
}

// readLoop is the only reader of stdout; the channel closes when the process exits
func (u *UCI) readLoop(r io.Reader) {
	defer close(u.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		u.lines <- scanner.Text()
	}
}

// waitFor consumes output until match returns true
func (u *UCI) waitFor(ctx context.Context, match func(string) bool) error {
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return ErrClosed
			}
			if match(line) {
				return nil
			}
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for engine")
		}
	}
}

func (u *UCI) initialize(ctx context.Context) error {
	u.sendCommand("uci")
	if err := u.waitFor(ctx, func(l string) bool { return l == "uciok" }); err != nil {
		return errors.Wrap(err, "uciok")
	}
	return u.ready(ctx)
}

func (u *UCI) ready(ctx context.Context) error {
	u.sendCommand("isready")
	if err := u.waitFor(ctx, func(l string) bool { return l == "readyok" }); err != nil {
		return errors.Wrap(err, "readyok")
	}
	return nil
}

func (u *UCI) sendCommand(cmd string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintln(u.stdin, cmd)
}

// SetSkillLevel sets the Stockfish skill level (0-20)
func (u *UCI) SetSkillLevel(level int) {
	if level < 0 {
		level = 0
	} else if level > 20 {
		level = 20
	}
	u.sendCommand(fmt.Sprintf("setoption name Skill Level value %d", level))
}

func (u *UCI) NewGame(ctx context.Context) error {
	u.sendCommand("ucinewgame")
	return u.ready(ctx)
}

func (u *UCI) SetPosition(fen string, moves []string) {
	cmd := fmt.Sprintf("position fen %s", fen)
	if len(moves) > 0 {
		cmd += " moves " + strings.Join(moves, " ")
	}
	u.sendCommand(cmd)
}

// Search runs "go movetime" and waits for bestmove, bounded by ctx and by
// twice the search time plus a second
func (u *UCI) Search(ctx context.Context, timeMs int) (*SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeMs*2+1000)*time.Millisecond)
	defer cancel()

	u.sendCommand(fmt.Sprintf("go movetime %d", timeMs))

	result := &SearchResult{}
	err := u.waitFor(ctx, func(line string) bool {
		if strings.HasPrefix(line, "info ") {
			parseInfo(line, result)
			return false
		}
		if strings.HasPrefix(line, "bestmove ") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				result.BestMove = parts[1]
			}
			return true
		}
		return false
	})
	if err != nil {
		// a late bestmove would desync the next search
		u.sendCommand("stop")
		drain, cancelDrain := context.WithTimeout(context.Background(), 500*time.Millisecond)
		u.waitFor(drain, func(l string) bool { return strings.HasPrefix(l, "bestmove ") })
		cancelDrain()
		return nil, errors.Wrap(err, "bestmove")
	}
	return result, nil
}

func parseInfo(line string, result *SearchResult) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "depth":
			fmt.Sscanf(fields[i+1], "%d", &result.Depth)
		case "cp":
			fmt.Sscanf(fields[i+1], "%d", &result.Score)
			result.IsMate = false
		case "mate":
			fmt.Sscanf(fields[i+1], "%d", &result.MateIn)
			result.IsMate = true
			if result.MateIn > 0 {
				result.Score = 100000 - result.MateIn
			} else {
				result.Score = -100000 - result.MateIn
			}
		}
	}
}

func (u *UCI) Close() error {
	u.sendCommand("quit")

	done := make(chan error, 1)
	go func() {
		done <- u.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(1 * time.Second):
		// Force kill if doesn't exit gracefully
		return u.cmd.Process.Kill()
	}
}
