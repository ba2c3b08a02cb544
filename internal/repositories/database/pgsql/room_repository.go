package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dablu-app/dablu_backend/internal/apperrors"
	"github.com/dablu-app/dablu_backend/internal/core/domain"
	portsrepo "github.com/dablu-app/dablu_backend/internal/core/ports/repositories"
	"github.com/dablu-app/dablu_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRoomRepository struct {
	BaseRepository
}

func newPgxRoomRepository(db *pgxpool.Pool) portsrepo.RoomRepositoryFacade {
	return &PgxRoomRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.RoomRepositoryFacade = (*PgxRoomRepository)(nil)

func toModelRoom(d domain.Room) (models.Room, error) {
	users, err := json.Marshal(d.Users)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to marshal room users: %w", err)
	}
	bill, err := json.Marshal(d.Bill)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to marshal room ledger: %w", err)
	}
	payerList, err := json.Marshal(d.PayerList)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to marshal payer list: %w", err)
	}
	history, err := json.Marshal(d.History)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to marshal room history: %w", err)
	}

	return models.Room{
		RoomID:    d.RoomID,
		RoomName:  d.RoomName,
		AdminID:   d.AdminID,
		Users:     users,
		Bill:      bill,
		PayerList: payerList,
		History:   history,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
		LastSettledAt: d.LastSettledAt,
	}, nil
}

func toDomainRoom(m models.Room) (*domain.Room, error) {
	room := domain.Room{
		RoomID:   m.RoomID,
		RoomName: m.RoomName,
		AdminID:  m.AdminID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
		LastSettledAt: m.LastSettledAt,
	}

	if err := json.Unmarshal(m.Users, &room.Users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room users: %w", err)
	}
	if err := json.Unmarshal(m.Bill, &room.Bill); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room ledger: %w", err)
	}
	if err := json.Unmarshal(m.PayerList, &room.PayerList); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payer list: %w", err)
	}
	if err := json.Unmarshal(m.History, &room.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room history: %w", err)
	}
	return &room, nil
}

const roomColumns = `room_id, room_name, admin_id, users, bill, payer_list, history, created_at, created_by, last_updated_at, last_updated_by, last_settled_at`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var m models.Room
	err := row.Scan(
		&m.RoomID,
		&m.RoomName,
		&m.AdminID,
		&m.Users,
		&m.Bill,
		&m.PayerList,
		&m.History,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.LastSettledAt,
	)
	if err != nil {
		return nil, err
	}
	return toDomainRoom(m)
}

func (r *PgxRoomRepository) SaveRoom(ctx context.Context, room domain.Room) error {
	m, err := toModelRoom(room)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO rooms (room_id, room_name, admin_id, users, bill, payer_list, history, created_at, created_by, last_updated_at, last_updated_by, last_settled_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
    `
	_, err = r.Pool.Exec(ctx, query,
		m.RoomID,
		m.RoomName,
		m.AdminID,
		m.Users,
		m.Bill,
		m.PayerList,
		m.History,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.LastSettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (r *PgxRoomRepository) FindRoomByID(ctx context.Context, roomID string) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE room_id = $1;`
	room, err := scanRoom(r.Pool.QueryRow(ctx, query, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room by ID %s: %w", roomID, err)
	}
	return room, nil
}

// FindRoomsByUserID matches the member IDs stored in the users JSONB array.
func (r *PgxRoomRepository) FindRoomsByUserID(ctx context.Context, userID string) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE users ? $1 ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms for user %s: %w", userID, err)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating room rows: %w", rows.Err())
	}
	return rooms, nil
}

// MutateRoom loads the room under a row lock, applies fn and writes the
// result back inside one transaction. Errors returned by fn abort the
// transaction and pass through unwrapped so the caller can inspect them.
func (r *PgxRoomRepository) MutateRoom(ctx context.Context, roomID string, fn func(*domain.Room) error) (*domain.Room, error) {
	return r.mutateRoomTx(ctx, roomID, fn, false)
}

// SettleRoom behaves like MutateRoom but first takes a per-room advisory
// lock without waiting, so at most one settlement proceeds at a time.
func (r *PgxRoomRepository) SettleRoom(ctx context.Context, roomID string, fn func(*domain.Room) error) (*domain.Room, error) {
	return r.mutateRoomTx(ctx, roomID, fn, true)
}

func (r *PgxRoomRepository) mutateRoomTx(ctx context.Context, roomID string, fn func(*domain.Room) error, advisoryLock bool) (*domain.Room, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if advisoryLock {
		var acquired bool
		err := tx.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock(hashtext($1));`, roomID).Scan(&acquired)
		if err != nil {
			return nil, fmt.Errorf("failed to take settlement lock: %w", err)
		}
		if !acquired {
			return nil, &apperrors.SettlementConflictError{
				Type:       apperrors.ConflictSettlementInProgress,
				Suggestion: "another settlement is being processed, try again shortly",
			}
		}
	}

	query := `SELECT ` + roomColumns + ` FROM rooms WHERE room_id = $1 FOR UPDATE;`
	room, err := scanRoom(tx.QueryRow(ctx, query, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock room %s: %w", roomID, err)
	}

	if err := fn(room); err != nil {
		return nil, err
	}

	m, err := toModelRoom(*room)
	if err != nil {
		return nil, err
	}
	updateQuery := `
        UPDATE rooms
        SET room_name = $1, admin_id = $2, users = $3, bill = $4, payer_list = $5, history = $6,
            last_updated_at = $7, last_updated_by = $8, last_settled_at = $9
        WHERE room_id = $10;
    `
	_, err = tx.Exec(ctx, updateQuery,
		m.RoomName,
		m.AdminID,
		m.Users,
		m.Bill,
		m.PayerList,
		m.History,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.LastSettledAt,
		m.RoomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update room %s: %w", roomID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *PgxRoomRepository) DeleteRoom(ctx context.Context, roomID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM rooms WHERE room_id = $1;`, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", roomID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
