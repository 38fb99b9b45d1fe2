package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/ports"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

var postColumns = []string{"id", "external_id", "title", "body", "community", "author", "created_at"}

// PostgresRepository persists posts and derived ideas into Postgres.
type PostgresRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

var _ ports.RecordStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// FindPostByExternalID returns the parent row with the given platform id.
func (r *PostgresRepository) FindPostByExternalID(ctx context.Context, externalID string) (*domain.StoredPost, error) {
	return r.findOne(ctx, sq.Eq{"external_id": externalID})
}

// FindPostByTitle returns any parent row whose title matches exactly.
func (r *PostgresRepository) FindPostByTitle(ctx context.Context, title string) (*domain.StoredPost, error) {
	return r.findOne(ctx, sq.Eq{"title": title})
}

// RecentPostsByAuthor lists the newest parent rows by author.
func (r *PostgresRepository) RecentPostsByAuthor(ctx context.Context, author string, limit int) ([]domain.StoredPost, error) {
	if r.db == nil || limit <= 0 {
		return nil, nil
	}

	query, args, err := r.psql.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"author": author}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build author query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query author posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.StoredPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return posts, nil
}

// InsertPost stores a parent row and returns its id.
func (r *PostgresRepository) InsertPost(ctx context.Context, post domain.CandidatePost) (string, error) {
	if r.db == nil {
		return "", errors.New("postgres repository has no database")
	}

	query, args, err := r.psql.
		Insert("posts").
		Columns("external_id", "title", "body", "community", "author", "score", "comment_count", "url", "permalink", "created_at").
		Values(post.ExternalID, post.Title, post.Body, post.Community, post.Author,
			post.Score, post.CommentCount, post.URL, post.Permalink, post.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build post insert: %w", err)
	}

	var id string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", classify(fmt.Errorf("insert post %s: %w", post.ExternalID, err))
	}
	return id, nil
}

// InsertRecord stores a derived idea under its parent post.
func (r *PostgresRepository) InsertRecord(ctx context.Context, record domain.ExtractedRecord) (string, error) {
	if r.db == nil {
		return "", errors.New("postgres repository has no database")
	}

	builder, err := r.recordInsert(record)
	if err != nil {
		return "", err
	}

	query, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return "", fmt.Errorf("build idea insert: %w", err)
	}

	var id string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", classify(fmt.Errorf("insert %s idea %q: %w", record.Kind, record.Name, err))
	}
	return id, nil
}

func (r *PostgresRepository) recordInsert(record domain.ExtractedRecord) (sq.InsertBuilder, error) {
	switch {
	case record.Kind == domain.KindBusiness && record.Business != nil:
		b := record.Business
		return r.psql.Insert("business_ideas").
			Columns("post_id", "name", "opportunities", "problems_solved", "target_customers",
				"market_size", "marketing_strategy", "niche", "category", "full_analysis", "status").
			Values(record.ParentID, record.Name, pq.Array(b.Opportunities), pq.Array(b.ProblemsSolved),
				pq.Array(b.TargetCustomers), pq.Array(b.MarketSize), pq.Array(b.MarketingStrategy),
				b.Niche, b.Category, record.FullAnalysis, string(record.Status)), nil
	case record.Kind == domain.KindMarketing && record.Marketing != nil:
		m := record.Marketing
		return r.psql.Insert("marketing_ideas").
			Columns("post_id", "name", "channels", "target_audience", "key_messages", "tactics",
				"impact_level", "full_analysis", "status").
			Values(record.ParentID, record.Name, pq.Array(m.Channels), pq.Array(m.TargetAudience),
				pq.Array(m.KeyMessages), pq.Array(m.Tactics), m.ImpactLevel, record.FullAnalysis,
				string(record.Status)), nil
	default:
		return sq.InsertBuilder{}, fmt.Errorf("record %q has no %s payload", record.Name, record.Kind)
	}
}

func (r *PostgresRepository) findOne(ctx context.Context, where sq.Eq) (*domain.StoredPost, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.psql.Select(postColumns...).From("posts").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup: %w", err)
	}

	post, err := scanPost(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.StoredPost, error) {
	var post domain.StoredPost
	var body, comm, author sql.NullString
	err := row.Scan(&post.ID, &post.ExternalID, &post.Title, &body, &comm, &author, &post.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return post, err
	}
	if err != nil {
		return post, fmt.Errorf("scan post: %w", err)
	}
	post.Body, post.Community, post.Author = body.String, comm.String, author.String
	return post, nil
}

// classify turns pq unique/check violations into ports.ConstraintError.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return &ports.ConstraintError{Kind: ports.ConstraintUnique, Constraint: pqErr.Constraint, Err: err}
	case pqCheckViolation:
		return &ports.ConstraintError{Kind: ports.ConstraintCheck, Constraint: pqErr.Constraint, Err: err}
	default:
		return err
	}
}
