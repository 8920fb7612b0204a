package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"skillsprint/internal/domain"
	"skillsprint/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "", likePattern("   "))
	assert.Equal(t, "%go%", likePattern(" go "))
	assert.Equal(t, `%100\%\_off%`, likePattern("100%_off"))
}

// Integration tests need a disposable PostgreSQL in TEST_DATABASE_URL.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, database.RunMigrations(dbURL))

	ctx := context.Background()
	pool, err := database.NewPostgresConnection(ctx, dbURL)
	if err != nil {
		t.Skipf("test database unreachable: %v", err)
	}
	_, err = pool.Exec(ctx, `TRUNCATE ai_chats, jobs, users`)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestUserRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Should create a student with empty arrays", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, domain.NewProfile("stu-1", "ana@example.com", "Ana", domain.RoleStudent, nil, now)))

		p, err := repo.GetByID(ctx, "stu-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleStudent, p.Role)
		assert.Equal(t, []string{}, p.BookmarkedJobs)
		assert.Nil(t, p.PostedJobs)
	})

	t.Run("Should reject the same id under another role", func(t *testing.T) {
		err := repo.Put(ctx, domain.NewProfile("stu-1", "ana@example.com", "Ana", domain.RoleRecruiter, nil, now))
		assert.ErrorIs(t, err, domain.ErrRoleConflict)

		p, err := repo.GetByID(ctx, "stu-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleStudent, p.Role)
	})

	t.Run("Should keep stored quiz answers when the account is refreshed", func(t *testing.T) {
		require.NoError(t, repo.UpdateQuizAnswers(ctx, "stu-1", []string{"a", "b", "c"}))
		require.NoError(t, repo.Put(ctx, domain.NewProfile("stu-1", "ana@example.com", "Ana Maria", domain.RoleStudent, nil, now)))

		p, err := repo.GetByID(ctx, "stu-1")
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", p.Name)
		assert.Equal(t, []string{"a", "b", "c"}, p.CareerQuizAnswers)
	})

	t.Run("Should add bookmarks once and remove them", func(t *testing.T) {
		require.NoError(t, repo.AddBookmark(ctx, "stu-1", "job-1"))
		require.NoError(t, repo.AddBookmark(ctx, "stu-1", "job-1"))
		p, _ := repo.GetByID(ctx, "stu-1")
		assert.Equal(t, []string{"job-1"}, p.BookmarkedJobs)

		require.NoError(t, repo.RemoveBookmark(ctx, "stu-1", "job-1"))
		p, _ = repo.GetByID(ctx, "stu-1")
		assert.Empty(t, p.BookmarkedJobs)
	})

	t.Run("Should report missing profiles", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateResumeURL(ctx, "nobody", "https://x"), domain.ErrNotFound)
	})
}

func TestJobRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	jobs := NewJobRepository(pool)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, users.Put(ctx, domain.NewProfile("rec-1", "hr@acme.io", "Rita", domain.RoleRecruiter, nil, now)))

	older := &domain.Job{Title: "Data Intern", Company: "Acme", Location: "Remote", Type: domain.JobTypeInternship,
		Remote: true, Description: "d", Requirements: "r", SkillsRequired: []string{"Python"}, RecruiterID: "rec-1", CreatedAt: now.Add(-time.Hour)}
	newer := &domain.Job{Title: "Backend Engineer", Company: "Acme", Location: "Berlin", Type: domain.JobTypeFullTime,
		Description: "d", Requirements: "r", SkillsRequired: []string{"Go", "SQL"}, RecruiterID: "rec-1", CreatedAt: now}

	t.Run("Should create jobs and record them on the recruiter", func(t *testing.T) {
		require.NoError(t, jobs.Create(ctx, older))
		require.NoError(t, jobs.Create(ctx, newer))
		assert.NotEmpty(t, newer.ID)

		p, err := users.GetByID(ctx, "rec-1")
		require.NoError(t, err)
		assert.Equal(t, []string{older.ID, newer.ID}, p.PostedJobs)
	})

	t.Run("Should list recruiter jobs newest first", func(t *testing.T) {
		list, err := jobs.FetchByRecruiter(ctx, "rec-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Backend Engineer", list[0].Title)
	})

	t.Run("Should search by skill case-insensitively", func(t *testing.T) {
		list, total, err := jobs.Search(ctx, domain.JobFilter{Query: "sql"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, newer.ID, list[0].ID)
	})

	t.Run("Should filter remote jobs", func(t *testing.T) {
		list, _, err := jobs.Search(ctx, domain.JobFilter{RemoteOnly: true})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, older.ID, list[0].ID)
	})

	t.Run("Should refuse jobs for unknown recruiters", func(t *testing.T) {
		err := jobs.Create(ctx, &domain.Job{Title: "x", Company: "x", Location: "x", Type: domain.JobTypeContract,
			Description: "x", Requirements: "x", RecruiterID: "ghost", CreatedAt: now})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestConversationRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	repo := NewConversationRepository(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, users.Put(ctx, domain.NewProfile("stu-2", "bo@example.com", "Bo", domain.RoleStudent, nil, now)))

	_, err := repo.Get(ctx, "stu-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	msgs := []domain.Message{
		{ID: "1", Content: "Hi", Sender: domain.SenderAI, Timestamp: now},
		{ID: "2", Content: "Hello", Sender: domain.SenderUser, Timestamp: now},
	}
	require.NoError(t, repo.Put(ctx, "stu-2", msgs))

	got, err := repo.Get(ctx, "stu-2")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Hello", got[1].Content)
	assert.True(t, got[0].Timestamp.Equal(now))

	require.NoError(t, repo.Delete(ctx, "stu-2"))
	assert.ErrorIs(t, repo.Delete(ctx, "stu-2"), domain.ErrNotFound)
}

func TestCourseRepository(t *testing.T) {
	pool := setupPool(t)
	courses, err := NewCourseRepository(pool).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 10)
	assert.NotEmpty(t, courses[0].Skills)
}
