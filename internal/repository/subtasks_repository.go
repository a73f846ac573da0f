package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/questlog/internal/error_values"
	"github.com/limbo/questlog/pkg/cleanup"
	"github.com/limbo/questlog/pkg/entity"
)

type SubtasksRepository struct {
	conn PgConnection
}

func NewSubtasksRepo(cfg DBConfig) *SubtasksRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for subtasksRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for subtasksRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing subtasks pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &SubtasksRepository{
		conn: pool,
	}
}

func NewSubtasksRepoWithConn(conn PgConnection) *SubtasksRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for subtasksRepo: " + err.Error())
	}
	return &SubtasksRepository{
		conn: conn,
	}
}

func (sr *SubtasksRepository) Create(ctx context.Context, sub *entity.Subtask) (uuid.UUID, error) {
	var id uuid.UUID
	row := sr.conn.QueryRow(ctx, `INSERT INTO subtasks (quest_id, user_id, name, category, goal, due_date, xp_reward, priority, status, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id;`,
		sub.ParentID,
		sub.UserID,
		sub.Name,
		sub.Category,
		sub.Goal,
		sub.DueDate,
		sub.ExperienceReward,
		sub.Priority,
		sub.Status,
		sub.Progress,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// FK violation: parent quest is gone
			if pgErr.Code == "23503" {
				return uuid.UUID{}, errorvalues.ErrQuestNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating subtask db error: " + err.Error())
	}
	return id, nil
}

func (sr *SubtasksRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Subtask, error) {
	var sub entity.Subtask
	sub.ID = id
	row := sr.conn.QueryRow(ctx, `SELECT quest_id, user_id, name, category, goal, due_date, xp_reward, priority, status, progress, created_at, updated_at
		FROM subtasks WHERE id = $1;`, id)
	if err := row.Scan(
		&sub.ParentID,
		&sub.UserID,
		&sub.Name,
		&sub.Category,
		&sub.Goal,
		&sub.DueDate,
		&sub.ExperienceReward,
		&sub.Priority,
		&sub.Status,
		&sub.Progress,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrSubtaskNotFound
		}
		return nil, errors.New("getting subtask by id error: " + err.Error())
	}
	return &sub, nil
}

func (sr *SubtasksRepository) GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Subtask, error) {
	subs := make([]*entity.Subtask, 0)
	rows, err := sr.conn.Query(ctx, `SELECT id, quest_id, user_id, name, category, goal, due_date, xp_reward, priority, status, progress, created_at, updated_at
		FROM subtasks WHERE user_id = $1 ORDER BY created_at;`, uid)
	if err != nil {
		return nil, errors.New("getting subtasks by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		s := entity.Subtask{}
		err = rows.Scan(&s.ID, &s.ParentID, &s.UserID, &s.Name, &s.Category, &s.Goal, &s.DueDate, &s.ExperienceReward, &s.Priority, &s.Status, &s.Progress, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, errors.New("unmarshalling subtask error: " + err.Error())
		}
		subs = append(subs, &s)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return subs, nil
}

func (sr *SubtasksRepository) Update(ctx context.Context, sub *entity.Subtask) error {
	ct, err := sr.conn.Exec(ctx, `UPDATE subtasks SET name = $1, category = $2, goal = $3, due_date = $4, xp_reward = $5, priority = $6, status = $7, progress = $8, updated_at = NOW()
		WHERE id = $9;`,
		sub.Name, sub.Category, sub.Goal, sub.DueDate, sub.ExperienceReward, sub.Priority, sub.Status, sub.Progress, sub.ID,
	)
	if err != nil {
		return errors.New("error updating subtask: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrSubtaskNotFound
	}
	return nil
}

func (sr *SubtasksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := sr.conn.Exec(ctx, `DELETE FROM subtasks WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting subtask: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrSubtaskNotFound
	}
	return nil
}
