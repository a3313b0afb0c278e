package service

import (
	"context"
	"strings"

	"github.com/noah-isme/coursehub-client/internal/models"
)

type enrollmentLister interface {
	ListEnrollments(ctx context.Context, userID models.ID) []models.Enrollment
}

// DashboardService composes the personalised dashboard.
type DashboardService struct {
	identity    currentUserProvider
	enrollments enrollmentLister
	recentLimit int
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(identity currentUserProvider, enrollments enrollmentLister, recentLimit int) *DashboardService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &DashboardService{identity: identity, enrollments: enrollments, recentLimit: recentLimit}
}

// Summary returns the welcome line data, stats, and recent enrollments of the
// logged-in user. The enrollments are fetched once for both views.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	enrollments := s.enrollments.ListEnrollments(ctx, user.ID)

	return &models.DashboardSummary{
		WelcomeName: WelcomeName(*user),
		Initials:    models.Initials(WelcomeName(*user)),
		Stats:       ComputeStats(enrollments),
		Recent:      LatestEnrollments(enrollments, s.recentLimit),
	}, nil
}

// WelcomeName is the user's name, or the local part of the email when the session
// has no name.
func WelcomeName(user models.SessionUser) string {
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(user.Email, "@")
	return local
}
