package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Directory string `arg:"" optional:"" default:"." help:"Directory to initialize the site in"`
	Force     bool   `help:"Overwrite existing site files"`
}

func (i *InitCmd) Run(_ *Global, _ *CLI) error {
	fmt.Printf("Initializing site in %s\n", i.Directory)
	if err := scaffold.Extract(i.Directory, i.Force); err != nil {
		return err
	}
	fmt.Println("Site initialized. Run 'sitegen build' to render it.")
	return nil
}
