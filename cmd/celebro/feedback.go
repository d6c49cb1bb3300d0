package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/celebrationpro/celebro/internal/planner"
	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Manage client feedback",
}

var feedbackAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record client feedback for an event",
	RunE:  runFeedbackAdd,
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an event's feedback",
	RunE:  runFeedbackList,
}

var (
	fbEvent   string
	fbClient  string
	fbRating  int
	fbComment string
)

func init() {
	feedbackCmd.AddCommand(feedbackAddCmd, feedbackListCmd)

	feedbackAddCmd.Flags().StringVar(&fbEvent, "event", "", "Event ID")
	feedbackAddCmd.Flags().StringVar(&fbClient, "client", "", "Client name (required)")
	feedbackAddCmd.Flags().IntVar(&fbRating, "rating", 0, "Rating 1-5 (required)")
	feedbackAddCmd.Flags().StringVar(&fbComment, "comment", "", "Comment")
	feedbackAddCmd.MarkFlagRequired("client")
	feedbackAddCmd.MarkFlagRequired("rating")

	feedbackListCmd.Flags().StringVar(&fbEvent, "event", "", "Event ID")
}

func runFeedbackAdd(cmd *cobra.Command, args []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	eventID, err := resolveEvent(fbEvent, cfg)
	if err != nil {
		return err
	}
	p := planner.New(s)
	if _, err := p.Event(eventID); err != nil {
		return err
	}

	fb, err := s.AddFeedback(eventID, fbClient, fbRating, fbComment)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded feedback: %s\n", fb.ID)
	return nil
}

func runFeedbackList(cmd *cobra.Command, args []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	eventID, err := resolveEvent(fbEvent, cfg)
	if err != nil {
		return err
	}

	items, err := s.ListFeedback(eventID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No feedback found")
		return nil
	}

	var sum int
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCLIENT\tRATING\tCOMMENT")
	for _, fb := range items {
		fmt.Fprintf(w, "%s\t%s\t%d/5\t%s\n", truncateID(fb.ID), truncate(fb.ClientName, 20), fb.Rating, truncate(fb.Comment, 50))
		sum += fb.Rating
	}
	w.Flush()
	fmt.Printf("\nAverage rating: %.1f/5\n", float64(sum)/float64(len(items)))
	return nil
}
