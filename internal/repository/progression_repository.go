package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/questlog/internal/error_values"
	"github.com/limbo/questlog/pkg/cleanup"
	"github.com/limbo/questlog/pkg/entity"
)

// ProgressionRepository stores one row per user: total experience and the
// streak state. Level is never stored; services derive it on read.
type ProgressionRepository struct {
	conn PgConnection
}

func NewProgressionRepo(cfg DBConfig) *ProgressionRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for progressionRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for progressionRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing progression pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &ProgressionRepository{
		conn: pool,
	}
}

func NewProgressionRepoWithConn(conn PgConnection) *ProgressionRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for progressionRepo: " + err.Error())
	}
	return &ProgressionRepository{
		conn: conn,
	}
}

func (pr *ProgressionRepository) GetByUserID(ctx context.Context, uid uuid.UUID) (*entity.UserProgression, error) {
	var p entity.UserProgression
	p.UserID = uid
	row := pr.conn.QueryRow(ctx, `SELECT total_xp, streak_count, last_activity_date FROM user_progressions WHERE user_id = $1;`, uid)
	if err := row.Scan(&p.TotalExperience, &p.StreakCount, &p.LastActivityDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrProgressionNotFound
		}
		return nil, errors.New("getting progression error: " + err.Error())
	}
	return &p, nil
}

func (pr *ProgressionRepository) ApplyExperience(ctx context.Context, uid uuid.UUID, amount int) error {
	_, err := pr.conn.Exec(ctx, `INSERT INTO user_progressions (user_id, total_xp) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET total_xp = user_progressions.total_xp + $2, updated_at = NOW();`,
		uid, amount,
	)
	if err != nil {
		return errors.New("applying experience db error: " + err.Error())
	}
	return nil
}

func (pr *ProgressionRepository) RecordStreakActivity(ctx context.Context, uid uuid.UUID, count int, date time.Time) error {
	_, err := pr.conn.Exec(ctx, `INSERT INTO user_progressions (user_id, streak_count, last_activity_date) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET streak_count = $2, last_activity_date = $3, updated_at = NOW();`,
		uid, count, date,
	)
	if err != nil {
		return errors.New("recording streak activity db error: " + err.Error())
	}
	return nil
}
