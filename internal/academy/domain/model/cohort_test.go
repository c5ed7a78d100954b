package model_test

import (
	"testing"
	"time"

	"showcase-platform/internal/academy/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestCohortValidate(t *testing.T) {
	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	before := start.Add(-24 * time.Hour)
	after := start.Add(70 * 24 * time.Hour)

	c := &model.Cohort{Name: "Spring 2024", StartDate: start, Status: model.CohortPlanned}
	assert.NoError(t, c.Validate())

	c.EndDate = &after
	assert.NoError(t, c.Validate())

	c.EndDate = &before
	assert.ErrorIs(t, c.Validate(), model.ErrCohortDates)

	c.EndDate = nil
	c.Status = "paused"
	assert.ErrorIs(t, c.Validate(), model.ErrCohortStatus)

	c.Status = model.CohortActive
	c.Name = "  "
	assert.ErrorIs(t, c.Validate(), model.ErrCohortName)
}

func TestCohortInstructors(t *testing.T) {
	c := &model.Cohort{Instructors: []string{"i-1", "i-2"}}
	assert.True(t, c.HasInstructor("i-2"))
	assert.False(t, c.HasInstructor("i-3"))

	p := &model.InstructorProfile{AssignedCohorts: []string{"c-1"}}
	assert.True(t, p.Teaches("c-1"))
	assert.False(t, p.Teaches("c-2"))
}

func TestProfileNames(t *testing.T) {
	p := &model.StudentProfile{FirstName: "Ada", LastName: "Lovelace"}
	assert.NoError(t, p.Validate())
	assert.Equal(t, "Ada Lovelace", p.FullName())

	p.LastName = ""
	assert.ErrorIs(t, p.Validate(), model.ErrProfileName)

	assert.Equal(t, "templates/t-1/assets/logo.png", model.FileKey("t-1", "assets/logo.png"))
}
