package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EnrollmentStatus is the display label derived from progress.
type EnrollmentStatus string

const (
	EnrollmentStatusNotStarted EnrollmentStatus = "Not Started"
	EnrollmentStatusInProgress EnrollmentStatus = "In Progress"
	EnrollmentStatusCompleted  EnrollmentStatus = "Completed"
)

// Valid reports whether s is one of the known labels.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusNotStarted, EnrollmentStatusInProgress, EnrollmentStatusCompleted:
		return true
	}
	return false
}

const (
	MinProgress = 0
	MaxProgress = 100
)

// Enrollment links a user to a course. At most one exists per (UserID, CourseID).
type Enrollment struct {
	ID          ID               `json:"id,omitempty"`
	UserID      ID               `json:"userId"`
	CourseID    ID               `json:"courseId"`
	CourseTitle string           `json:"courseTitle"`
	EnrolledAt  time.Time        `json:"enrolledAt"`
	Progress    int              `json:"progress"`
	Status      EnrollmentStatus `json:"status"`
}

type enrollmentFields Enrollment

// MarshalJSON leaves the id out until the backend has assigned one.
func (e Enrollment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID *ID `json:"id,omitempty"`
		enrollmentFields
	}{assignedID(e.ID), enrollmentFields(e)})
}

// UnmarshalJSON reads enrolledAt as any ISO-8601 timestamp.
func (e *Enrollment) UnmarshalJSON(data []byte) error {
	var aux struct {
		enrollmentFields
		EnrolledAt json.RawMessage `json:"enrolledAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	enrolledAt, err := decodeTimestamp(aux.EnrolledAt)
	if err != nil {
		return fmt.Errorf("enrolledAt: %w", err)
	}
	*e = Enrollment(aux.enrollmentFields)
	e.EnrolledAt = enrolledAt
	return nil
}

// ProgressUpdate is the PATCH body for a progress change.
type ProgressUpdate struct {
	Progress int              `json:"progress"`
	Status   EnrollmentStatus `json:"status"`
}

// ClampProgress bounds p to [0, 100].
func ClampProgress(p int) int {
	if p < MinProgress {
		return MinProgress
	}
	if p > MaxProgress {
		return MaxProgress
	}
	return p
}

// StatusAfterUpdate is the label written by a progress update: Completed at 100,
// In Progress otherwise, including 0.
func StatusAfterUpdate(progress int) EnrollmentStatus {
	if progress >= MaxProgress {
		return EnrollmentStatusCompleted
	}
	return EnrollmentStatusInProgress
}

// Phase classifies an enrollment for statistics: Not Started at exactly 0,
// Completed at exactly 100, In Progress strictly between. Other values have no phase.
func (e Enrollment) Phase() (EnrollmentStatus, bool) {
	switch {
	case e.Progress == MaxProgress:
		return EnrollmentStatusCompleted, true
	case e.Progress == MinProgress:
		return EnrollmentStatusNotStarted, true
	case e.Progress > MinProgress && e.Progress < MaxProgress:
		return EnrollmentStatusInProgress, true
	}
	return "", false
}

// EnrollmentStats aggregates a user's enrollments.
type EnrollmentStats struct {
	Total           int     `json:"totalCourses"`
	Completed       int     `json:"completedCourses"`
	InProgress      int     `json:"inProgressCourses"`
	NotStarted      int     `json:"notStartedCourses"`
	AverageProgress float64 `json:"averageProgress"`
}
