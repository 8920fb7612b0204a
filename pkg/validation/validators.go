package validation

import (
	"regexp"
	"skillsprint/internal/domain"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Letters, numbers, spaces and common punctuation: . ' - / & ( ) ,
var nameRegex = regexp.MustCompile(`^[\p{L}0-9 .'/&(),-]+$`)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("job_type", ValidJobType)
	_ = v.RegisterValidation("skill_list", SkillList)
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// NoEmoji rejects supplementary-plane characters and symbol categories.
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// ValidJobType accepts one of the four job types.
func ValidJobType(fl validator.FieldLevel) bool {
	return domain.JobType(fl.Field().String()).Valid()
}

// SkillList accepts a []string with no blank entries.
func SkillList(fl validator.FieldLevel) bool {
	skills, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, s := range skills {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

// CleanSkills trims entries and drops blanks and case-insensitive duplicates,
// keeping first occurrence order.
func CleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
