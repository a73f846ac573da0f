package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/questlog/pkg/entity"
)

type QuestsRepositoryI interface {
	// Creates a quest row. Only user-provided and default fields are taken
	// from the quest; id and timestamps are assigned by the database
	Create(ctx context.Context, quest *entity.Quest) (uuid.UUID, error)
	// Searches quest with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quest, error)
	// Lists the full quest collection of a user. The engine refetches this
	// after every write instead of patching locally
	GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Quest, error)
	// Updates quest by ID (ID in quest is necessary)
	Update(ctx context.Context, quest *entity.Quest) error
	// Deletes quest with id; owned subtasks go with it (FK cascade)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SubtasksRepositoryI interface {
	// Creates a subtask row under its parent quest
	Create(ctx context.Context, sub *entity.Subtask) (uuid.UUID, error)
	// Searches subtask with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Subtask, error)
	// Lists every subtask of a user across all quests
	GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Subtask, error)
	// Updates subtask by ID
	Update(ctx context.Context, sub *entity.Subtask) error
	// Deletes subtask with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProgressionRepositoryI interface {
	// Reads the user's progression row
	GetByUserID(ctx context.Context, uid uuid.UUID) (*entity.UserProgression, error)
	// Atomically adds experience, creating the row on first write
	ApplyExperience(ctx context.Context, uid uuid.UUID, amount int) error
	// Persists the streak state computed by the engine. The count is passed
	// in so streak arithmetic stays in one place instead of leaking into SQL
	RecordStreakActivity(ctx context.Context, uid uuid.UUID, count int, date time.Time) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
