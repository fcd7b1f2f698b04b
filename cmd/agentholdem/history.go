package main

import (
	"fmt"
	"os"

	"github.com/lox/agentholdem/internal/phh"
)

// HistoryCmd renders PHH files written by the persistence layer.
type HistoryCmd struct {
	Files []string `arg:"" name:"file" help:"PHH files to render"`
}

func (c *HistoryCmd) Run() error {
	for i, path := range c.Files {
		hand, err := phh.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if i > 0 {
			fmt.Println()
		}
		if err := phh.Render(os.Stdout, hand); err != nil {
			return err
		}
	}
	return nil
}
