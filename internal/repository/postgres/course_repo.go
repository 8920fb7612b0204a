package postgres

import (
	"context"
	"skillsprint/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type courseRepo struct {
	db *pgxpool.Pool
}

func NewCourseRepository(db *pgxpool.Pool) domain.CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) FetchAll(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, description, duration, level, skills, url FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []domain.Course{}
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Duration, &c.Level, &c.Skills, &c.URL); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
