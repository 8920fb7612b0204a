package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"skillsprint/internal/domain"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/validation"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

type jobUsecase struct {
	jobRepo  domain.JobRepository
	profiles domain.ProfileRepository
	now      func() time.Time
}

func NewJobUsecase(jobRepo domain.JobRepository, profiles domain.ProfileRepository) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:  jobRepo,
		profiles: profiles,
		now:      time.Now,
	}
}

func (u *jobUsecase) PostJob(ctx context.Context, recruiterID string, req domain.PostJobRequest) (*domain.Job, error) {
	job := &domain.Job{
		Title:          strings.TrimSpace(req.Title),
		Company:        strings.TrimSpace(req.Company),
		Location:       strings.TrimSpace(req.Location),
		Type:           req.Type,
		Remote:         req.Remote,
		Salary:         strings.TrimSpace(req.Salary),
		Description:    strings.TrimSpace(req.Description),
		Requirements:   strings.TrimSpace(req.Requirements),
		SkillsRequired: validation.CleanSkills(req.SkillsRequired),
		RecruiterID:    recruiterID,
		Applicants:     []string{},
		CreatedAt:      u.now().UTC(),
	}

	switch {
	case job.Title == "", job.Company == "", job.Location == "", job.Description == "", job.Requirements == "":
		return nil, apperror.BadRequest("Title, company, location, description and requirements are required")
	case !job.Type.Valid():
		return nil, apperror.BadRequest("Job type must be one of: internship, full-time, part-time, contract")
	}

	if err := u.jobRepo.Create(ctx, job); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Forbidden("Only recruiters can post jobs")
		}
		return nil, apperror.Internal(fmt.Errorf("create job: %w", err))
	}
	return job, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(err)
	}
	return job, nil
}

func (u *jobUsecase) ListByRecruiter(ctx context.Context, recruiterID string) ([]domain.Job, error) {
	jobs, err := u.jobRepo.FetchByRecruiter(ctx, recruiterID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

func (u *jobUsecase) Search(ctx context.Context, filter domain.JobFilter, page, pageSize int) ([]domain.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, apperror.BadRequest("Unknown job type")
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	jobs, total, err := u.jobRepo.Search(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return jobs, total, nil
}

func (u *jobUsecase) Bookmark(ctx context.Context, studentID, jobID string) error {
	if _, err := u.GetJob(ctx, jobID); err != nil {
		return err
	}
	if err := u.profiles.AddBookmark(ctx, studentID, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Profile not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (u *jobUsecase) RemoveBookmark(ctx context.Context, studentID, jobID string) error {
	if err := u.profiles.RemoveBookmark(ctx, studentID, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Profile not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

var exportColumns = []string{"TITLE", "COMPANY", "LOCATION", "TYPE", "REMOTE", "SALARY", "SKILLS", "APPLICANTS", "POSTED AT"}

// Export writes the recruiter's jobs, newest first, to an xlsx workbook.
func (u *jobUsecase) Export(ctx context.Context, recruiterID string) ([]byte, string, error) {
	jobs, err := u.ListByRecruiter(ctx, recruiterID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Jobs"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", apperror.Internal(err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, job := range jobs {
		for colIdx, value := range exportRow(job) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	filename := fmt.Sprintf("jobs_%s.xlsx", u.now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func exportRow(job domain.Job) []interface{} {
	remote := "No"
	if job.Remote {
		remote = "Yes"
	}
	return []interface{}{
		job.Title,
		job.Company,
		job.Location,
		string(job.Type),
		remote,
		job.Salary,
		strings.Join(job.SkillsRequired, ", "),
		len(job.Applicants),
		job.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
}
