package ports

import (
	"context"

	"github.com/taskmaster/board/internal/domain/entities"
)

// RecordStore is the collection CRUD contract served over HTTP and the CLI.
type RecordStore interface {
	List(ctx context.Context, collection string) ([]entities.Record, error)
	GetByID(ctx context.Context, collection, id string) (entities.Record, error)
	Create(ctx context.Context, collection string, record entities.Record) (entities.Record, error)
	Patch(ctx context.Context, collection, id string, fields entities.Record) (entities.Record, error)
	Replace(ctx context.Context, collection, id string, record entities.Record) (entities.Record, error)
	Remove(ctx context.Context, collection, id string) (bool, error)
	Collections(ctx context.Context) ([]string, error)
	Snapshot(ctx context.Context) (entities.Document, error)
	Summary(ctx context.Context) (*BoardSummary, error)
}

// RecordFilter keeps records whose field equals the value, or whose array
// field contains it. All entries must match.
type RecordFilter map[string]string

// BoardSummary is the aggregate view served at /summary
type BoardSummary struct {
	Counts          map[string]int `json:"counts"`
	ProjectsByState map[string]int `json:"projectsByStatus"`
	TasksByState    map[string]int `json:"tasksByStatus"`
	OpenTasks       int            `json:"openTasks"`
	OverdueTasks    int            `json:"overdueTasks"`
	UpcomingTasks   int            `json:"upcomingTasks"`
	AverageProgress float64        `json:"averageProjectProgress"`
	LiveSessions    int            `json:"liveSessions"`
}
