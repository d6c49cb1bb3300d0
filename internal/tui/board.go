// Package tui provides the interactive task board for Celebro.
package tui

import (
	"fmt"
	"strings"

	"github.com/celebrationpro/celebro/internal/models"
	"github.com/celebrationpro/celebro/internal/planner"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	boardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusPending    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	statusCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	statusBlocked    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
)

// TaskRow implements list.Item for the board list.
type TaskRow struct {
	ID       string
	Name     string
	Module   string
	Assignee string
	Status   string
	Progress float64
	CanStart bool
	Deps     []string
	Subtasks []string
}

func (r TaskRow) FilterValue() string { return r.Name }
func (r TaskRow) Title() string       { return r.Name }
func (r TaskRow) Description() string {
	desc := fmt.Sprintf("%s • %s • %.0f%%", formatStatus(r.Status), r.Module, r.Progress)
	if r.Status == string(models.TaskStatusPending) && r.CanStart {
		desc += " • ready"
	}
	return desc
}

func formatStatus(status string) string {
	switch status {
	case "pending":
		return statusPending.Render("● pending")
	case "in_progress":
		return statusInProgress.Render("● in progress")
	case "completed":
		return statusCompleted.Render("● completed")
	case "blocked":
		return statusBlocked.Render("● blocked")
	default:
		return status
	}
}

// Board is the task board model for a single event.
type Board struct {
	planner *planner.Planner
	eventID string

	list      list.Model
	rows      []TaskRow
	overall   float64
	critical  []string
	filter    string
	filterIdx int
	showing   *TaskRow
	errMsg    string
	width     int
	height    int
}

var filters = []string{"", "pending", "in_progress", "completed", "blocked"}
var filterNames = []string{"ALL", "PENDING", "IN PROGRESS", "DONE", "BLOCKED"}

// NewBoard creates a board for the given event.
func NewBoard(p *planner.Planner, eventID string) *Board {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = boardTitleStyle

	return &Board{
		planner: p,
		eventID: eventID,
		list:    l,
	}
}

// Run starts the board.
func (b *Board) Run() error {
	prog := tea.NewProgram(b, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

type boardDataMsg struct {
	rows     []TaskRow
	overall  float64
	critical []string
	err      error
}

// Init implements tea.Model
func (b *Board) Init() tea.Cmd {
	return b.refresh()
}

// refresh rebuilds the hierarchy from the store and derives the board rows.
func (b *Board) refresh() tea.Cmd {
	return func() tea.Msg {
		h, err := b.planner.Build(b.eventID)
		if err != nil {
			return boardDataMsg{err: err}
		}

		var rows []TaskRow
		for _, task := range h.EventTasks(b.eventID) {
			rows = append(rows, TaskRow{
				ID:       task.ID,
				Name:     task.Name,
				Module:   task.Module,
				Assignee: task.Assignee,
				Status:   string(task.Status),
				Progress: h.Progress(task.ID),
				CanStart: h.CanStart(task.ID),
				Deps:     task.Dependencies,
				Subtasks: task.Subtasks,
			})
		}

		_, overall, err := b.planner.Progress(b.eventID)
		if err != nil {
			return boardDataMsg{err: err}
		}

		return boardDataMsg{rows: rows, overall: overall, critical: h.CriticalPath(b.eventID)}
	}
}

// Update implements tea.Model
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.list.SetSize(msg.Width, msg.Height-3)
		return b, nil

	case boardDataMsg:
		if msg.err != nil {
			b.errMsg = msg.err.Error()
			return b, nil
		}
		b.errMsg = ""
		b.rows = msg.rows
		b.overall = msg.overall
		b.critical = msg.critical
		b.applyFilter()
		return b, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if b.showing != nil {
				b.showing = nil
				return b, nil
			}
			return b, tea.Quit
		case "esc":
			b.showing = nil
			return b, nil
		case "r":
			return b, b.refresh()
		case "f":
			b.filterIdx = (b.filterIdx + 1) % len(filters)
			b.filter = filters[b.filterIdx]
			b.applyFilter()
			return b, nil
		case "enter":
			if item := b.list.SelectedItem(); item != nil {
				row := item.(TaskRow)
				b.showing = &row
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.list, cmd = b.list.Update(msg)
	return b, cmd
}

func (b *Board) applyFilter() {
	var items []list.Item
	for _, row := range b.rows {
		if b.filter != "" && row.Status != b.filter {
			continue
		}
		items = append(items, row)
	}
	b.list.SetItems(items)
	b.list.Title = fmt.Sprintf("Tasks [%s]", filterNames[b.filterIdx])
}

// View implements tea.Model
func (b *Board) View() string {
	if b.errMsg != "" {
		return footerStyle.Render("Error: " + b.errMsg + "  (q to quit)")
	}
	if b.showing != nil {
		return b.detailView()
	}

	footer := fmt.Sprintf("event %.0f%% complete", b.overall)
	if len(b.critical) > 0 {
		footer += " • critical: " + strings.Join(b.critical, " → ")
	}
	footer += "  [r]efresh [f]ilter [enter] detail [q]uit"

	return b.list.View() + "\n" + footerStyle.Render(footer)
}

func (b *Board) detailView() string {
	r := b.showing
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", boardTitleStyle.Render(r.Name))
	fmt.Fprintf(&sb, "ID:        %s\n", r.ID)
	fmt.Fprintf(&sb, "Module:    %s\n", r.Module)
	if r.Assignee != "" {
		fmt.Fprintf(&sb, "Assignee:  %s\n", r.Assignee)
	}
	fmt.Fprintf(&sb, "Status:    %s\n", formatStatus(r.Status))
	fmt.Fprintf(&sb, "Progress:  %.0f%%\n", r.Progress)
	if len(r.Deps) > 0 {
		fmt.Fprintf(&sb, "Depends:   %s\n", strings.Join(r.Deps, ", "))
	}
	if len(r.Subtasks) > 0 {
		fmt.Fprintf(&sb, "Subtasks:  %s\n", strings.Join(r.Subtasks, ", "))
	}
	if r.Status == string(models.TaskStatusPending) {
		if r.CanStart {
			fmt.Fprintf(&sb, "\n%s\n", statusCompleted.Render("Ready to start"))
		} else {
			fmt.Fprintf(&sb, "\n%s\n", statusBlocked.Render("Waiting on dependencies"))
		}
	}
	sb.WriteString("\n[esc] back")
	return detailStyle.Render(sb.String())
}
