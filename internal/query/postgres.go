package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

const artworksTable = "artworks"

var artworkColumns = []string{
	"id", "title", "description", "slug", "images", "tags", "featured", "created_at",
}

// Postgres implements Store over the local mirror of the content store.
// The mirror is filled by cmd/sync; the site only reads from it.
type Postgres struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewPostgres creates a store over db.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *Postgres) selectArtworks() squirrel.SelectBuilder {
	return s.sb.Select(artworkColumns...).From(artworksTable)
}

func (s *Postgres) firstPageQuery(limit int) squirrel.SelectBuilder {
	return s.selectArtworks().OrderBy("id ASC").Limit(uint64(limit))
}

func (s *Postgres) nextPageQuery(cursor domain.Cursor, limit int) squirrel.SelectBuilder {
	return s.selectArtworks().
		Where(squirrel.Gt{"id": cursor.String()}).
		OrderBy("id ASC").
		Limit(uint64(limit))
}

func (s *Postgres) searchQuery(term string, limit int) squirrel.SelectBuilder {
	pattern := escapeLike(strings.ToLower(term)) + "%"
	return s.selectArtworks().
		Where(squirrel.Or{
			squirrel.Expr("lower(title) LIKE ?", pattern),
			squirrel.Expr("EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) LIKE ?)", pattern),
		}).
		OrderBy("id ASC").
		Limit(uint64(limit))
}

func (s *Postgres) relatedQuery(tags []string, excludeID string, limit int) squirrel.SelectBuilder {
	return s.selectArtworks().
		Where(squirrel.NotEq{"id": excludeID}).
		Where(squirrel.Expr("tags && ?", pq.Array(tags))).
		OrderBy("id ASC").
		Limit(uint64(limit))
}

func (s *Postgres) neighborQuery(id string, before bool) squirrel.SelectBuilder {
	q := s.sb.Select("id", "title", "slug").From(artworksTable).Limit(1)
	if before {
		return q.Where(squirrel.Lt{"id": id}).OrderBy("id DESC")
	}
	return q.Where(squirrel.Gt{"id": id}).OrderBy("id ASC")
}

// FirstPage returns the first limit artworks.
func (s *Postgres) FirstPage(ctx context.Context, limit int) ([]domain.Artwork, error) {
	return s.queryArtworks(ctx, "query.Postgres.FirstPage", s.firstPageQuery(limit))
}

// NextPage returns up to limit artworks after cursor.
func (s *Postgres) NextPage(ctx context.Context, cursor domain.Cursor, limit int) ([]domain.Artwork, error) {
	return s.queryArtworks(ctx, "query.Postgres.NextPage", s.nextPageQuery(cursor, limit))
}

// Count returns the total number of artworks.
func (s *Postgres) Count(ctx context.Context) (int, error) {
	const op = "query.Postgres.Count"

	query, args, err := s.sb.Select("COUNT(*)").From(artworksTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// Search matches term as a case-insensitive prefix against titles and tags.
func (s *Postgres) Search(ctx context.Context, term string, limit int) ([]domain.Artwork, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	return s.queryArtworks(ctx, "query.Postgres.Search", s.searchQuery(term, limit))
}

// BySlug returns the artwork with slug, or nil if none exists.
func (s *Postgres) BySlug(ctx context.Context, slug string) (*domain.Artwork, error) {
	const op = "query.Postgres.BySlug"

	query, args, err := s.selectArtworks().Where(squirrel.Eq{"slug": slug}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a, err := scanArtwork(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// Slugs returns every defined slug.
func (s *Postgres) Slugs(ctx context.Context) ([]string, error) {
	const op = "query.Postgres.Slugs"

	query, args, err := s.sb.Select("slug").From(artworksTable).
		Where(squirrel.NotEq{"slug": nil}).
		Where(squirrel.NotEq{"slug": ""}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// Related returns artworks sharing at least one tag with tags.
func (s *Postgres) Related(ctx context.Context, tags []string, excludeID string, limit int) ([]domain.Artwork, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	return s.queryArtworks(ctx, "query.Postgres.Related", s.relatedQuery(tags, excludeID, limit))
}

// Previous returns the artwork immediately before id.
func (s *Postgres) Previous(ctx context.Context, id string) (*domain.ArtworkSummary, error) {
	return s.neighbor(ctx, "query.Postgres.Previous", s.neighborQuery(id, true))
}

// Next returns the artwork immediately after id.
func (s *Postgres) Next(ctx context.Context, id string) (*domain.ArtworkSummary, error) {
	return s.neighbor(ctx, "query.Postgres.Next", s.neighborQuery(id, false))
}

func (s *Postgres) neighbor(ctx context.Context, op string, q squirrel.SelectBuilder) (*domain.ArtworkSummary, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var summary domain.ArtworkSummary
	var slug sql.NullString
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&summary.ID, &summary.Title, &slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	summary.Slug = slug.String
	return &summary, nil
}

// All returns the whole catalogue in order.
func (s *Postgres) All(ctx context.Context) ([]domain.Artwork, error) {
	return s.queryArtworks(ctx, "query.Postgres.All", s.selectArtworks().OrderBy("id ASC"))
}

// Upsert inserts or replaces a mirrored artwork.
func (s *Postgres) Upsert(ctx context.Context, a domain.Artwork) error {
	const op = "query.Postgres.Upsert"

	images, err := encodeImages(a.Images)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var slug sql.NullString
	if a.Slug != "" {
		slug = sql.NullString{String: a.Slug, Valid: true}
	}
	var createdAt sql.NullTime
	if !a.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: a.CreatedAt, Valid: true}
	}
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}

	query, args, err := s.sb.Insert(artworksTable).
		Columns(artworkColumns...).
		Values(a.ID, a.Title, a.Description, slug, images, pq.Array(tags), a.Featured, createdAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			slug = EXCLUDED.slug,
			images = EXCLUDED.images,
			tags = EXCLUDED.tags,
			featured = EXCLUDED.featured,
			created_at = EXCLUDED.created_at,
			synced_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Prune deletes mirrored artworks whose identity is not in keep.
// Returns the number of rows removed.
func (s *Postgres) Prune(ctx context.Context, keep []string) (int64, error) {
	const op = "query.Postgres.Prune"

	query, args, err := s.sb.Delete(artworksTable).
		Where(squirrel.Expr("NOT (id = ANY(?))", pq.Array(keep))).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.RowsAffected()
}

func (s *Postgres) queryArtworks(ctx context.Context, op string, q squirrel.SelectBuilder) ([]domain.Artwork, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var artworks []domain.Artwork
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		artworks = append(artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return artworks, nil
}

// =============================================================================
// Row mapping
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

// imageJSON is the stored shape of one image in the images column.
type imageJSON struct {
	AssetRef  string `json:"asset_ref"`
	AssetType string `json:"asset_type,omitempty"`
	Alt       string `json:"alt,omitempty"`
	Caption   string `json:"caption,omitempty"`
}

func scanArtwork(row scanner) (domain.Artwork, error) {
	var (
		a         domain.Artwork
		slug      sql.NullString
		images    pqtype.NullRawMessage
		tags      []string
		createdAt sql.NullTime
	)

	err := row.Scan(&a.ID, &a.Title, &a.Description, &slug, &images, pq.Array(&tags), &a.Featured, &createdAt)
	if err != nil {
		return domain.Artwork{}, err
	}

	a.Slug = slug.String
	a.Tags = tags
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	a.Images, err = decodeImages(images)
	if err != nil {
		return domain.Artwork{}, err
	}
	return a, nil
}

func encodeImages(refs []domain.ImageRef) (pqtype.NullRawMessage, error) {
	if len(refs) == 0 {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	stored := make([]imageJSON, len(refs))
	for i, r := range refs {
		stored[i] = imageJSON{AssetRef: r.AssetRef, AssetType: r.AssetType, Alt: r.Alt, Caption: r.Caption}
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("encode images: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

func decodeImages(raw pqtype.NullRawMessage) ([]domain.ImageRef, error) {
	if !raw.Valid || len(raw.RawMessage) == 0 {
		return nil, nil
	}
	var stored []imageJSON
	if err := json.Unmarshal(raw.RawMessage, &stored); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	refs := make([]domain.ImageRef, 0, len(stored))
	for _, s := range stored {
		refs = append(refs, domain.ImageRef{AssetRef: s.AssetRef, AssetType: s.AssetType, Alt: s.Alt, Caption: s.Caption})
	}
	return refs, nil
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
