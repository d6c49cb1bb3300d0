// Package store provides SQLite-backed persistence for Celebro.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/celebrationpro/celebro/internal/hierarchy"
	"github.com/celebrationpro/celebro/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides access to the Celebro SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		event_type TEXT NOT NULL,
		client_name TEXT NOT NULL,
		venue TEXT,
		event_date DATETIME,
		status TEXT NOT NULL DEFAULT 'planning',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		name TEXT NOT NULL,
		module TEXT NOT NULL,
		parent_id TEXT,
		assignee TEXT,
		due_date DATETIME,
		status TEXT NOT NULL DEFAULT 'pending',
		priority TEXT NOT NULL DEFAULT 'medium',
		estimated_hours REAL NOT NULL DEFAULT 0,
		actual_hours REAL NOT NULL DEFAULT 0,
		metadata TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (event_id) REFERENCES events(id)
	);

	CREATE TABLE IF NOT EXISTS task_dependencies (
		task_id TEXT NOT NULL,
		depends_on_task_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id),
		FOREIGN KEY (depends_on_task_id) REFERENCES tasks(id)
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		client_name TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (event_id) REFERENCES events(id)
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		event_id TEXT,
		task_id TEXT,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_event_id ON tasks(event_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_task_deps_task_id ON task_dependencies(task_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_event_id ON feedback(event_id);
	CREATE INDEX IF NOT EXISTS idx_notifications_event_id ON notifications(event_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Event Operations ---

// CreateEvent inserts a new event.
func (s *Store) CreateEvent(name, eventType, clientName, venue string, eventDate time.Time) (*models.Event, error) {
	now := time.Now().UTC()
	event := &models.Event{
		ID:         uuid.New().String(),
		Name:       name,
		EventType:  eventType,
		ClientName: clientName,
		Venue:      venue,
		EventDate:  eventDate,
		Status:     models.EventStatusPlanning,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.Exec(
		`INSERT INTO events (id, name, event_type, client_name, venue, event_date, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Name, event.EventType, event.ClientName, event.Venue, event.EventDate, event.Status, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(id string) (*models.Event, error) {
	event := &models.Event{}
	var venue sql.NullString
	var eventDate sql.NullTime

	err := s.db.QueryRow(
		`SELECT id, name, event_type, client_name, venue, event_date, status, created_at, updated_at FROM events WHERE id = ?`,
		id,
	).Scan(&event.ID, &event.Name, &event.EventType, &event.ClientName, &venue, &eventDate, &event.Status, &event.CreatedAt, &event.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	if venue.Valid {
		event.Venue = venue.String
	}
	if eventDate.Valid {
		event.EventDate = eventDate.Time
	}
	return event, nil
}

// ListEvents returns all events, optionally filtered by status.
func (s *Store) ListEvents(status string) ([]models.Event, error) {
	query := `SELECT id, name, event_type, client_name, venue, event_date, status, created_at, updated_at FROM events`
	var args []interface{}

	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		var venue sql.NullString
		var eventDate sql.NullTime
		if err := rows.Scan(&event.ID, &event.Name, &event.EventType, &event.ClientName, &venue, &eventDate, &event.Status, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if venue.Valid {
			event.Venue = venue.String
		}
		if eventDate.Valid {
			event.EventDate = eventDate.Time
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// UpdateEventStatus updates the status of an event.
func (s *Store) UpdateEventStatus(id string, status models.EventStatus) error {
	_, err := s.db.Exec(
		`UPDATE events SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	return err
}

// --- Task Operations ---

// CreateTaskInput carries the caller-supplied fields for CreateTask.
type CreateTaskInput struct {
	ID             string // optional; a UUID is generated when empty
	EventID        string
	Name           string
	Module         string
	ParentID       string
	Assignee       string
	DueDate        time.Time
	Priority       models.TaskPriority
	EstimatedHours float64
	Metadata       map[string]string
}

// CreateTask inserts a new task tagged with its owning event.
func (s *Store) CreateTask(in CreateTaskInput) (*models.Task, error) {
	now := time.Now().UTC()
	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	meta := in.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	meta[models.MetaEventID] = in.EventID

	task := &models.Task{
		ID:             id,
		Name:           in.Name,
		Module:         in.Module,
		ParentID:       in.ParentID,
		Assignee:       in.Assignee,
		DueDate:        in.DueDate,
		Status:         models.TaskStatusPending,
		Priority:       priority,
		EstimatedHours: in.EstimatedHours,
		ActualHours:    0,
		Dependencies:   []string{},
		Subtasks:       []string{},
		Metadata:       meta,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	metaJSON, _ := json.Marshal(meta)

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO tasks (id, event_id, name, module, parent_id, assignee, due_date, status, priority, estimated_hours, actual_hours, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, in.EventID, task.Name, task.Module, nullIfEmpty(task.ParentID), nullIfEmpty(task.Assignee),
		nullIfZeroTime(task.DueDate), task.Status, task.Priority, task.EstimatedHours, task.ActualHours,
		string(metaJSON), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.db.QueryRow(
		`SELECT id, name, module, parent_id, assignee, due_date, status, priority, estimated_hours, actual_hours, metadata, created_at, updated_at FROM tasks WHERE id = ?`,
		id,
	)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListTasksForEvent returns an event's tasks in creation order, optionally
// filtered by status. Creation order matters: the hierarchy engine keys its
// critical-path tie-break off it.
func (s *Store) ListTasksForEvent(eventID, status string) ([]models.Task, error) {
	query := `SELECT id, name, module, parent_id, assignee, due_date, status, priority, estimated_hours, actual_hours, metadata, created_at, updated_at FROM tasks WHERE event_id = ?`
	args := []interface{}{eventID}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTaskStatus updates the status of a task.
func (s *Store) UpdateTaskStatus(id string, status models.TaskStatus) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	return err
}

// RecordActualHours adds logged hours to a task's accumulated total.
func (s *Store) RecordActualHours(id string, hours float64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET actual_hours = actual_hours + ?, updated_at = ? WHERE id = ?`,
		hours, time.Now().UTC(), id,
	)
	return err
}

// AddDependency records that taskID depends on dependsOnTaskID.
func (s *Store) AddDependency(taskID, dependsOnTaskID string) error {
	_, err := s.db.Exec(
		`INSERT INTO task_dependencies (task_id, depends_on_task_id, created_at) VALUES (?, ?, ?)`,
		taskID, dependsOnTaskID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert dependency: %w", err)
	}
	return nil
}

// ListDependencies returns the dependency edges between an event's tasks in
// insertion order.
func (s *Store) ListDependencies(eventID string) ([]hierarchy.Edge, error) {
	rows, err := s.db.Query(
		`SELECT d.task_id, d.depends_on_task_id
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.task_id
		 WHERE t.event_id = ?
		 ORDER BY d.rowid ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()

	var edges []hierarchy.Edge
	for rows.Next() {
		var e hierarchy.Edge
		if err := rows.Scan(&e.TaskID, &e.DependsOnID); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// --- Feedback Operations ---

// ErrInvalidRating indicates a feedback rating outside the 1-5 range.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// AddFeedback inserts a client feedback entry for an event.
func (s *Store) AddFeedback(eventID, clientName string, rating int, comment string) (*models.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	now := time.Now().UTC()
	fb := &models.Feedback{
		ID:         uuid.New().String(),
		EventID:    eventID,
		ClientName: clientName,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  now,
	}

	_, err := s.db.Exec(
		`INSERT INTO feedback (id, event_id, client_name, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.EventID, fb.ClientName, fb.Rating, fb.Comment, fb.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}
	return fb, nil
}

// ListFeedback returns feedback for an event, newest first.
func (s *Store) ListFeedback(eventID string) ([]models.Feedback, error) {
	rows, err := s.db.Query(
		`SELECT id, event_id, client_name, rating, comment, created_at FROM feedback WHERE event_id = ? ORDER BY created_at DESC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var fb models.Feedback
		var comment sql.NullString
		if err := rows.Scan(&fb.ID, &fb.EventID, &fb.ClientName, &fb.Rating, &comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if comment.Valid {
			fb.Comment = comment.String
		}
		items = append(items, fb)
	}
	return items, rows.Err()
}

// --- Notification Operations ---

// CreateNotification inserts a notification.
func (s *Store) CreateNotification(eventID, taskID, kind, message string) (*models.Notification, error) {
	now := time.Now().UTC()
	n := &models.Notification{
		ID:        uuid.New().String(),
		EventID:   eventID,
		TaskID:    taskID,
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}

	_, err := s.db.Exec(
		`INSERT INTO notifications (id, event_id, task_id, kind, message, read, created_at) VALUES (?, ?, ?, ?, ?, 0, ?)`,
		n.ID, nullIfEmpty(n.EventID), nullIfEmpty(n.TaskID), n.Kind, n.Message, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns notifications, optionally only unread ones.
func (s *Store) ListNotifications(unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT id, event_id, task_id, kind, message, read, created_at FROM notifications`
	if unreadOnly {
		query += ` WHERE read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var items []models.Notification
	for rows.Next() {
		var n models.Notification
		var eventID, taskID sql.NullString
		if err := rows.Scan(&n.ID, &eventID, &taskID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if eventID.Valid {
			n.EventID = eventID.String
		}
		if taskID.Valid {
			n.TaskID = taskID.String
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkNotificationRead marks a notification as read.
func (s *Store) MarkNotificationRead(id string) error {
	_, err := s.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}

// --- Helpers ---

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(sc scanner) (*models.Task, error) {
	task := &models.Task{}
	var parentID, assignee, metaJSON sql.NullString
	var dueDate sql.NullTime

	err := sc.Scan(&task.ID, &task.Name, &task.Module, &parentID, &assignee, &dueDate,
		&task.Status, &task.Priority, &task.EstimatedHours, &task.ActualHours,
		&metaJSON, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		task.ParentID = parentID.String
	}
	if assignee.Valid {
		task.Assignee = assignee.String
	}
	if dueDate.Valid {
		task.DueDate = dueDate.Time
	}
	if metaJSON.Valid && metaJSON.String != "" {
		json.Unmarshal([]byte(metaJSON.String), &task.Metadata)
	}
	return task, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZeroTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
