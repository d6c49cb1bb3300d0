package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage notifications",
}

var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE:  runNotifyList,
}

var notifyReadCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifyRead,
}

var notifyAll bool

func init() {
	notifyCmd.AddCommand(notifyListCmd, notifyReadCmd)
	notifyListCmd.Flags().BoolVar(&notifyAll, "all", false, "Include read notifications")
}

func runNotifyList(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	items, err := s.ListNotifications(!notifyAll)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No notifications")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTASK\tMESSAGE\tREAD")
	for _, n := range items {
		read := ""
		if n.Read {
			read = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", truncateID(n.ID), n.Kind, n.TaskID, truncate(n.Message, 60), read)
	}
	w.Flush()
	return nil
}

func runNotifyRead(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.MarkNotificationRead(args[0]); err != nil {
		return err
	}
	fmt.Printf("Marked %s as read\n", truncateID(args[0]))
	return nil
}
