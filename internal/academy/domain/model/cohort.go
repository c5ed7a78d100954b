package model

import (
	"errors"
	"strings"
	"time"
)

// CohortStatus is the lifecycle state of a cohort.
type CohortStatus string

const (
	CohortPlanned   CohortStatus = "planned"
	CohortActive    CohortStatus = "active"
	CohortCompleted CohortStatus = "completed"
	CohortArchived  CohortStatus = "archived"
)

func (s CohortStatus) Valid() bool {
	switch s {
	case CohortPlanned, CohortActive, CohortCompleted, CohortArchived:
		return true
	}
	return false
}

var (
	ErrCohortName   = errors.New("cohort name is required")
	ErrCohortDates  = errors.New("cohort end date must be after its start date")
	ErrCohortStatus = errors.New("unknown cohort status")
)

// Cohort is a group of students going through a program together.
type Cohort struct {
	ID          string       `json:"id" bson:"_id"`
	Name        string       `json:"name" bson:"name"`
	StartDate   time.Time    `json:"startDate" bson:"start_date"`
	EndDate     *time.Time   `json:"endDate,omitempty" bson:"end_date,omitempty"`
	Program     string       `json:"program,omitempty" bson:"program,omitempty"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Instructors []string     `json:"instructors" bson:"instructors"`
	Status      CohortStatus `json:"status" bson:"status"`
	CreatedAt   time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updated_at"`
}

// Validate checks required fields and date order.
func (c *Cohort) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCohortName
	}
	if !c.Status.Valid() {
		return ErrCohortStatus
	}
	if c.EndDate != nil && !c.EndDate.After(c.StartDate) {
		return ErrCohortDates
	}
	return nil
}

// HasInstructor reports whether userID teaches the cohort.
func (c *Cohort) HasInstructor(userID string) bool {
	for _, id := range c.Instructors {
		if id == userID {
			return true
		}
	}
	return false
}

// CohortStats summarizes a cohort's progress.
type CohortStats struct {
	CohortID    string  `json:"cohortId"`
	Students    int     `json:"students"`
	Submissions int     `json:"submissions"`
	Submitted   int     `json:"submitted"`
	Graded      int     `json:"graded"`
	Passing     int     `json:"passing"`
	PassingRate float64 `json:"passingRate"`
}
