// Package attendance tracks gym floor check-ins and check-outs.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/logctx"
	"github.com/flexfit/gymdesk/pkg/tool"
)

var (
	ErrAlreadyCheckedIn = errors.New("member is already checked in")
	ErrNotCheckedIn     = errors.New("member is not checked in")
)

type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func New(st store.Store, log *zap.SugaredLogger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

// CheckIn opens an attendance log for the member. A member with an open log
// cannot check in again.
func (s *Service) CheckIn(ctx context.Context, memberID string) (*models.AttendanceLog, error) {
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return nil, err
	}

	if open, err := s.store.OpenAttendance(ctx, memberID); err == nil && open != nil {
		return nil, ErrAlreadyCheckedIn
	} else if err != nil && err != store.ErrNotFound {
		return nil, err
	}

	log := &models.AttendanceLog{
		ID:          tool.GenerateShortID("A"),
		MemberID:    memberID,
		CheckInTime: dates.DateTimeOf(s.now()),
	}
	if err := s.store.SaveAttendance(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("member checked in",
		"member_id", memberID, "log_id", log.ID)
	return log, nil
}

// CheckOut closes the member's open log and stamps the visit duration in
// whole minutes.
func (s *Service) CheckOut(ctx context.Context, memberID string) (*models.AttendanceLog, error) {
	open, err := s.store.OpenAttendance(ctx, memberID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}

	checkedOut := dates.DateTimeOf(s.now())
	minutes := open.CheckInTime.MinutesUntil(checkedOut)
	open.CheckOutTime = &checkedOut
	open.DurationMinutes = &minutes

	if err := s.store.SaveAttendance(ctx, open); err != nil {
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("member checked out",
		"member_id", memberID, "log_id", open.ID, "duration_minutes", minutes)
	return open, nil
}

// ListByDay returns the logs whose check-in falls on the given day, newest
// first. An empty day means all days.
func (s *Service) ListByDay(ctx context.Context, day string) ([]*models.AttendanceLog, error) {
	logs, err := s.store.ListAttendance(ctx)
	if err != nil {
		return nil, err
	}

	var out []*models.AttendanceLog
	for _, l := range logs {
		if day == "" || strings.HasPrefix(l.CheckInTime.String(), day) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckInTime.String() > out[j].CheckInTime.String()
	})
	return out, nil
}

// Days lists the distinct calendar days that have attendance, newest first.
func (s *Service) Days(ctx context.Context) ([]string, error) {
	logs, err := s.store.ListAttendance(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var days []string
	for _, l := range logs {
		day := l.CheckInTime.Date().String()
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days, nil
}

// Delete removes a log entry, for desk corrections.
func (s *Service) Delete(ctx context.Context, logID string) error {
	return s.store.DeleteAttendance(ctx, logID)
}
