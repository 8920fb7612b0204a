package postgres

import (
	"context"
	"errors"
	"fmt"
	"skillsprint/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const profileColumns = `id, email, name, role, profile_image, created_at,
	career_track, skills, interests, bookmarked_jobs, completed_modules, career_quiz_answers,
	recommended_course_ids, recommended_title, recommended_description, recommended_skills,
	education, experience, resume_url,
	company, position, posted_jobs`

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &userRepo{db: db}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.Role, &p.ProfileImage, &p.CreatedAt,
		&p.CareerTrack, &p.Skills, &p.Interests, &p.BookmarkedJobs, &p.CompletedModules, &p.CareerQuizAnswers,
		&p.RecommendedCourseIDs, &p.RecommendedTitle, &p.RecommendedDescription, &p.RecommendedSkills,
		&p.Education, &p.Experience, &p.ResumeURL,
		&p.Company, &p.Position, &p.PostedJobs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

// Put inserts the profile or, when the id exists with the same role, refreshes
// the account fields. The conditional DO UPDATE affects no row on a role
// mismatch, which is how a conflict is detected without a second query.
func (r *userRepo) Put(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO users (
			id, email, name, role, profile_image, created_at, updated_at,
			career_track, skills, interests, bookmarked_jobs, completed_modules, career_quiz_answers,
			recommended_course_ids, recommended_skills, education, experience, resume_url,
			company, position, posted_jobs
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			profile_image = COALESCE(EXCLUDED.profile_image, users.profile_image),
			updated_at = NOW()
		WHERE users.role = EXCLUDED.role`

	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Email, p.Name, string(p.Role), p.ProfileImage, p.CreatedAt,
		p.CareerTrack, p.Skills, p.Interests, p.BookmarkedJobs, p.CompletedModules, p.CareerQuizAnswers,
		p.RecommendedCourseIDs, p.RecommendedSkills, p.Education, p.Experience, p.ResumeURL,
		p.Company, p.Position, p.PostedJobs,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrRoleConflict
		}
		return fmt.Errorf("put profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoleConflict
	}
	return nil
}

func (r *userRepo) UpdateQuizAnswers(ctx context.Context, id string, answers []string) error {
	if answers == nil {
		answers = []string{}
	}
	return r.exec(ctx, `UPDATE users SET career_quiz_answers = $2, updated_at = NOW() WHERE id = $1`, id, answers)
}

func (r *userRepo) UpdateRecommendation(ctx context.Context, id string, rec domain.Recommendation) error {
	query := `
		UPDATE users SET
			recommended_course_ids = $2,
			recommended_title = $3,
			recommended_description = $4,
			recommended_skills = $5,
			updated_at = NOW()
		WHERE id = $1`
	return r.exec(ctx, query, id, nonNil(rec.CourseIDs), rec.Title, rec.Description, nonNil(rec.Skills))
}

func (r *userRepo) UpdateResumeURL(ctx context.Context, id string, url string) error {
	return r.exec(ctx, `UPDATE users SET resume_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
}

func (r *userRepo) UpdateProfileImage(ctx context.Context, id string, url string) error {
	return r.exec(ctx, `UPDATE users SET profile_image = $2, updated_at = NOW() WHERE id = $1`, id, url)
}

func (r *userRepo) AddBookmark(ctx context.Context, id string, jobID string) error {
	query := `
		UPDATE users SET
			bookmarked_jobs = CASE
				WHEN $2::text = ANY(COALESCE(bookmarked_jobs, '{}')) THEN bookmarked_jobs
				ELSE array_append(COALESCE(bookmarked_jobs, '{}'), $2::text)
			END,
			updated_at = NOW()
		WHERE id = $1`
	return r.exec(ctx, query, id, jobID)
}

func (r *userRepo) RemoveBookmark(ctx context.Context, id string, jobID string) error {
	query := `UPDATE users SET bookmarked_jobs = array_remove(bookmarked_jobs, $2::text), updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id, jobID)
}

// exec runs a single-row update and maps "no such user" to ErrNotFound.
func (r *userRepo) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
