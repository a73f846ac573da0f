package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/questlog/internal/error_values"
	"github.com/limbo/questlog/pkg/cleanup"
	"github.com/limbo/questlog/pkg/entity"
)

type QuestsRepository struct {
	conn PgConnection
}

func NewQuestsRepo(cfg DBConfig) *QuestsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for questsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for questsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing quests pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &QuestsRepository{
		conn: pool,
	}
}

func NewQuestsRepoWithConn(conn PgConnection) *QuestsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for questsRepo: " + err.Error())
	}
	return &QuestsRepository{
		conn: conn,
	}
}

func (qr *QuestsRepository) Create(ctx context.Context, quest *entity.Quest) (uuid.UUID, error) {
	var id uuid.UUID
	row := qr.conn.QueryRow(ctx, `INSERT INTO quests (user_id, name, category, goal, due_date, xp_reward, priority, status, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id;`,
		quest.UserID,
		quest.Name,
		quest.Category,
		quest.Goal,
		quest.DueDate,
		quest.ExperienceReward,
		quest.Priority,
		quest.Status,
		quest.Progress,
	)
	if err := row.Scan(&id); err != nil {
		return uuid.UUID{}, errors.New("creating quest db error: " + err.Error())
	}
	return id, nil
}

func (qr *QuestsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quest, error) {
	var quest entity.Quest
	quest.ID = id
	row := qr.conn.QueryRow(ctx, `SELECT user_id, name, category, goal, due_date, xp_reward, priority, status, progress, created_at, updated_at
		FROM quests WHERE id = $1;`, id)
	if err := row.Scan(
		&quest.UserID,
		&quest.Name,
		&quest.Category,
		&quest.Goal,
		&quest.DueDate,
		&quest.ExperienceReward,
		&quest.Priority,
		&quest.Status,
		&quest.Progress,
		&quest.CreatedAt,
		&quest.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrQuestNotFound
		}
		return nil, errors.New("getting quest by id error: " + err.Error())
	}
	return &quest, nil
}

func (qr *QuestsRepository) GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Quest, error) {
	quests := make([]*entity.Quest, 0)
	rows, err := qr.conn.Query(ctx, `SELECT id, user_id, name, category, goal, due_date, xp_reward, priority, status, progress, created_at, updated_at
		FROM quests WHERE user_id = $1 ORDER BY created_at;`, uid)
	if err != nil {
		return nil, errors.New("getting quests by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		q := entity.Quest{}
		err = rows.Scan(&q.ID, &q.UserID, &q.Name, &q.Category, &q.Goal, &q.DueDate, &q.ExperienceReward, &q.Priority, &q.Status, &q.Progress, &q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			return nil, errors.New("unmarshalling quest error: " + err.Error())
		}
		quests = append(quests, &q)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return quests, nil
}

func (qr *QuestsRepository) Update(ctx context.Context, quest *entity.Quest) error {
	ct, err := qr.conn.Exec(ctx, `UPDATE quests SET name = $1, category = $2, goal = $3, due_date = $4, xp_reward = $5, priority = $6, status = $7, progress = $8, updated_at = NOW()
		WHERE id = $9;`,
		quest.Name, quest.Category, quest.Goal, quest.DueDate, quest.ExperienceReward, quest.Priority, quest.Status, quest.Progress, quest.ID,
	)
	if err != nil {
		return errors.New("error updating quest: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrQuestNotFound
	}
	return nil
}

func (qr *QuestsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := qr.conn.Exec(ctx, `DELETE FROM quests WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting quest: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrQuestNotFound
	}
	return nil
}
