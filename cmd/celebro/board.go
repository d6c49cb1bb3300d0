package main

import (
	"github.com/celebrationpro/celebro/internal/planner"
	"github.com/celebrationpro/celebro/internal/tui"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive task board",
	RunE:  runBoard,
}

var boardEvent string

func init() {
	boardCmd.Flags().StringVar(&boardEvent, "event", "", "Event ID")
}

func runBoard(cmd *cobra.Command, args []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	eventID, err := resolveEvent(boardEvent, cfg)
	if err != nil {
		return err
	}
	p := planner.New(s)
	if _, err := p.Event(eventID); err != nil {
		return err
	}

	return tui.NewBoard(p, eventID).Run()
}
