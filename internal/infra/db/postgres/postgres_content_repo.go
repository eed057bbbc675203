package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ContentRepository = (*contentRepo)(nil)

// contentRepo reads documents the CMS sync job projects into
// content_documents. This service never writes that table.
type contentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *contentRepo {
	return &contentRepo{pool: pool}
}

func (r *contentRepo) FindByID(ctx context.Context, tx repository.Tx, ct model.ContentType, id string) (*model.ContentDocument, error) {
	const q = `
SELECT id, content_type, title, slug, excerpt, hero_image_url, category, location,
       body, audio_narration_url, video_url
  FROM content_documents
 WHERE content_type = $1 AND id = $2;`
	row, err := pickRow(ctx, r.pool, tx, q, ct, id)
	if err != nil {
		return nil, err
	}

	var d model.ContentDocument
	err = row.Scan(
		&d.ID, &d.Type, &d.Title, &d.Slug, &d.Excerpt, &d.HeroImageURL,
		&d.Category, &d.Location, &d.Body, &d.AudioNarrationURL, &d.VideoURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &d, nil
}
