package postgres

import (
	"context"
	"errors"
	"fmt"
	"skillsprint/internal/domain"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobColumns = `id, title, company, location, type, remote, salary, description, requirements,
	skills_required, recruiter_id, applicants, created_at`

// Search matches the query against title, company or any required skill.
const jobSearchWhere = `
	WHERE ($1::text = '' OR title ILIKE $1 ESCAPE '\' OR company ILIKE $1 ESCAPE '\'
		OR EXISTS (SELECT 1 FROM unnest(skills_required) AS s WHERE s ILIKE $1 ESCAPE '\'))
	AND ($2::text = '' OR type = $2)
	AND (NOT $3::bool OR remote)`

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.Type, &job.Remote, &job.Salary,
		&job.Description, &job.Requirements, &job.SkillsRequired, &job.RecruiterID, &job.Applicants,
		&job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if job.SkillsRequired == nil {
		job.SkillsRequired = []string{}
	}
	if job.Applicants == nil {
		job.Applicants = []string{}
	}
	return &job, nil
}

// Create inserts the job and appends its id to the recruiter's posted_jobs in
// one transaction.
func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO jobs (title, company, location, type, remote, salary, description, requirements,
			skills_required, recruiter_id, applicants, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err = tx.QueryRow(ctx, query,
		job.Title, job.Company, job.Location, string(job.Type), job.Remote, job.Salary, job.Description,
		job.Requirements, nonNil(job.SkillsRequired), job.RecruiterID, nonNil(job.Applicants), job.CreatedAt,
	).Scan(&job.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert job: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users SET posted_jobs = array_append(COALESCE(posted_jobs, '{}'), $2::text), updated_at = NOW()
		WHERE id = $1 AND role = 'recruiter'`, job.RecruiterID, job.ID)
	if err != nil {
		return fmt.Errorf("record posted job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func (r *jobRepo) FetchByRecruiter(ctx context.Context, recruiterID string) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE recruiter_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *jobRepo) Search(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int64, error) {
	pattern := likePattern(filter.Query)
	args := []any{pattern, string(filter.Type), filter.RemoteOnly}

	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}
	query := `SELECT ` + jobColumns + ` FROM jobs` + jobSearchWhere + `
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`

	rows, err := r.db.Query(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+jobSearchWhere, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func collectJobs(rows pgx.Rows) ([]domain.Job, error) {
	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// likePattern wraps q for a case-insensitive substring match, escaping the
// LIKE wildcards it contains. Blank input disables the filter.
func likePattern(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
