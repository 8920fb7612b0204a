package validation_test

import (
	"testing"

	"skillsprint/internal/domain"
	"skillsprint/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type jobForm struct {
	Title          string   `validate:"required,valid_name"`
	Type           string   `validate:"required,job_type"`
	SkillsRequired []string `validate:"skill_list"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newValidator()

	t.Run("Should accept a well-formed job", func(t *testing.T) {
		err := v.Struct(jobForm{Title: "Backend Engineer", Type: string(domain.JobTypeFullTime), SkillsRequired: []string{"Go", "SQL"}})
		assert.NoError(t, err)
	})

	t.Run("Should reject unknown job types with a readable message", func(t *testing.T) {
		err := v.Struct(jobForm{Title: "Backend Engineer", Type: "freelance"})
		msgs := validation.FormatValidationErrors(err)
		assert.Equal(t, []string{"Job type must be one of: internship, full-time, part-time, contract"}, msgs)
	})

	t.Run("Should reject blank skills", func(t *testing.T) {
		err := v.Struct(jobForm{Title: "Dev", Type: "contract", SkillsRequired: []string{"Go", "  "}})
		assert.Error(t, err)
	})

	t.Run("Should report required fields", func(t *testing.T) {
		msgs := validation.FormatValidationErrors(v.Struct(jobForm{Type: "internship"}))
		assert.Contains(t, msgs, "Job title is required")
	})
}

func TestCleanSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, validation.CleanSkills([]string{" Go ", "", "SQL", "go"}))
	assert.Equal(t, []string{}, validation.CleanSkills(nil))
}
