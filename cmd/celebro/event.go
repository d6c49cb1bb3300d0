package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/celebrationpro/celebro/internal/models"
	"github.com/celebrationpro/celebro/internal/planner"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage events",
}

var eventAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new event",
	RunE:  runEventAdd,
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE:  runEventList,
}

var eventShowCmd = &cobra.Command{
	Use:   "show [event-id]",
	Short: "Show event details and progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventShow,
}

var eventStatusCmd = &cobra.Command{
	Use:   "status [event-id] [status]",
	Short: "Set event status (planning, active, completed, cancelled)",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventStatus,
}

var (
	eventName       string
	eventType       string
	eventClient     string
	eventVenue      string
	eventDate       string
	eventListStatus string
)

func init() {
	eventCmd.AddCommand(eventAddCmd, eventListCmd, eventShowCmd, eventStatusCmd)

	eventAddCmd.Flags().StringVar(&eventName, "name", "", "Event name (required)")
	eventAddCmd.Flags().StringVar(&eventType, "type", "", "Event type, e.g. wedding, birthday, corporate (required)")
	eventAddCmd.Flags().StringVar(&eventClient, "client", "", "Client name (required)")
	eventAddCmd.Flags().StringVar(&eventVenue, "venue", "", "Venue")
	eventAddCmd.Flags().StringVar(&eventDate, "date", "", "Event date (YYYY-MM-DD)")
	eventAddCmd.MarkFlagRequired("name")
	eventAddCmd.MarkFlagRequired("type")
	eventAddCmd.MarkFlagRequired("client")

	eventListCmd.Flags().StringVar(&eventListStatus, "status", "", "Filter by status (planning, active, completed, cancelled)")
}

func runEventAdd(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var date time.Time
	if eventDate != "" {
		date, err = time.Parse("2006-01-02", eventDate)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	event, err := s.CreateEvent(eventName, eventType, eventClient, eventVenue, date)
	if err != nil {
		return err
	}

	fmt.Printf("Created event: %s\n", event.ID)
	return nil
}

func runEventList(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	events, err := s.ListEvents(eventListStatus)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCLIENT\tDATE\tSTATUS")
	for _, e := range events {
		date := ""
		if !e.EventDate.IsZero() {
			date = e.EventDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(e.ID), truncate(e.Name, 30), e.EventType, truncate(e.ClientName, 20), date, e.Status)
	}
	w.Flush()
	return nil
}

func runEventShow(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	p := planner.New(s)
	event, err := p.Event(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", event.ID)
	fmt.Printf("Name:     %s\n", event.Name)
	fmt.Printf("Type:     %s\n", event.EventType)
	fmt.Printf("Client:   %s\n", event.ClientName)
	if event.Venue != "" {
		fmt.Printf("Venue:    %s\n", event.Venue)
	}
	if !event.EventDate.IsZero() {
		fmt.Printf("Date:     %s\n", event.EventDate.Format("2006-01-02"))
	}
	fmt.Printf("Status:   %s\n", event.Status)

	_, overall, err := p.Progress(event.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Progress: %.0f%%\n", overall)
	return nil
}

func runEventStatus(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	p := planner.New(s)
	if _, err := p.Event(args[0]); err != nil {
		return err
	}

	status, err := parseEventStatus(args[1])
	if err != nil {
		return err
	}
	if err := s.UpdateEventStatus(args[0], status); err != nil {
		return err
	}
	fmt.Printf("Event %s is now %s\n", truncateID(args[0]), args[1])
	return nil
}

func parseEventStatus(s string) (models.EventStatus, error) {
	switch models.EventStatus(s) {
	case models.EventStatusPlanning, models.EventStatusActive, models.EventStatusCompleted, models.EventStatusCancelled:
		return models.EventStatus(s), nil
	}
	return "", fmt.Errorf("invalid event status %q (planning, active, completed, cancelled)", s)
}
