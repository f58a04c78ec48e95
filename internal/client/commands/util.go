package commands

import (
	"fmt"
	"net/url"
	"strings"

	"chessplay/internal/client/display"
	"chessplay/internal/render"
)

func (r *Registry) registerUtilCommands() {
	r.Register(&Command{
		Name:        "theme",
		ShortName:   "t",
		Description: "Set board color theme",
		Usage:       "theme <off|brown|green|gray>",
		Handler:     themeHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set the prediction endpoint",
		Usage:       "url [endpoint]",
		Handler:     urlHandler,
	})
}

func themeHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: theme <off|brown|green|gray>")
	}
	t := s.Terminal()
	if err := t.SetTheme(render.ColorTheme(strings.ToLower(args[0]))); err != nil {
		return err
	}
	t.Redraw()
	return nil
}

func urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.Out(), "Endpoint: %s\n", s.Endpoint())
		return nil
	}

	u, err := url.Parse(args[0])
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint: %s", args[0])
	}
	s.SetEndpoint(args[0])
	fmt.Fprintf(s.Out(), "%sEndpoint set to: %s%s\n", display.Green, s.Endpoint(), display.Reset)
	return nil
}
