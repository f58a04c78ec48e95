// Package session holds the state shared by the REPL commands.
package session

import (
	"context"
	"io"

	"chessplay/internal/controller"
	"chessplay/internal/predict"
	"chessplay/internal/render"
)

type Session struct {
	Ctx    context.Context
	Ctrl   *controller.Controller
	Term   *render.Terminal
	Client *predict.Client
	Writer io.Writer
}

func (s *Session) Controller() *controller.Controller { return s.Ctrl }

func (s *Session) Terminal() *render.Terminal { return s.Term }

func (s *Session) Endpoint() string { return s.Client.Endpoint() }

func (s *Session) SetEndpoint(url string) { s.Client.SetEndpoint(url) }

func (s *Session) Context() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

func (s *Session) Out() io.Writer { return s.Writer }
