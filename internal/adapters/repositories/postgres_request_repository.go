package repositories

import (
	"context"
	"database/sql"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/platform/obs"
	"errors"
	"fmt"
	"time"
)

// Postgres-backed implementation of the RequestRepository port.
type PostgresRequestRepository struct{ DB *sql.DB }

func NewPostgresRequestRepository(db *sql.DB) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

func (s *PostgresRequestRepository) SaveRequest(ctx context.Context, req *domain.DropoffRequest) (err error) {
	defer obs.Time(ctx, "requests.Save")(&err)

	if s.DB == nil {
		return errors.New("postgres request repository: DB is nil")
	}
	if req == nil || req.ID == "" {
		return errors.New("save request: request id must not be empty")
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO dropoff_requests (id, lon, lat, created_at, status)
	VALUES ($1, $2, $3, $4, $5);
	`, req.ID, req.Coordinates.Lon, req.Coordinates.Lat, req.CreatedAt, string(req.Status))
	if err != nil {
		return fmt.Errorf("save request id=%s: %w", req.ID, err)
	}

	return nil
}

// Return all requests ordered by creation time, then id.
func (s *PostgresRequestRepository) ListRequests(ctx context.Context) (_ []*domain.DropoffRequest, err error) {
	defer obs.Time(ctx, "requests.List")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres request repository: DB is nil")
	}

	query := `
	SELECT
		id,
		lon,
		lat,
		created_at,
		status
	FROM dropoff_requests
	ORDER BY created_at, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list requests: query dropoff_requests table: %w", err)
	}
	defer rows.Close()

	requests := make([]*domain.DropoffRequest, 0, 16)
	for rows.Next() {
		var (
			id        string
			lon, lat  float64
			createdAt time.Time
			status    string
		)
		if err := rows.Scan(&id, &lon, &lat, &createdAt, &status); err != nil {
			return nil, fmt.Errorf("list requests: scan row: %w", err)
		}
		requests = append(requests, &domain.DropoffRequest{
			ID:          id,
			Coordinates: domain.Coordinates{Lon: lon, Lat: lat},
			CreatedAt:   createdAt,
			Status:      domain.RequestStatus(status),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: row iteration: %w", err)
	}

	return requests, nil
}

func (s *PostgresRequestRepository) MarkRouted(ctx context.Context, ids []string) error {
	if s.DB == nil {
		return errors.New("postgres request repository: DB is nil")
	}
	if len(ids) == 0 {
		return nil
	}

	_, err := s.DB.ExecContext(ctx, `
	UPDATE dropoff_requests
	SET status = $1
	WHERE id = ANY($2::text[]);
	`, string(domain.RequestRouted), ids)
	if err != nil {
		return fmt.Errorf("mark routed: %w", err)
	}

	return nil
}
