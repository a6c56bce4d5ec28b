// Package visitor manages walk-in leads from first visit to joined or lost.
package visitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/logctx"
	"github.com/flexfit/gymdesk/pkg/phone"
	"github.com/flexfit/gymdesk/pkg/tool"
	"github.com/flexfit/gymdesk/pkg/types"
)

type Input struct {
	Name     string              `json:"name"`
	Contact  string              `json:"contact"`
	Interest string              `json:"interest"`
	Status   types.VisitorStatus `json:"status"`
	Notes    string              `json:"notes"`
}

type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func New(st store.Store, log *zap.SugaredLogger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

func (in Input) validate() error {
	if in.Name == "" {
		return fmt.Errorf("visitor name is required")
	}
	if in.Contact != "" {
		if err := phone.Validate(in.Contact); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Visitor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = types.VisitorStatusFollowUp
	}

	v := &models.Visitor{
		ID:        tool.GenerateShortID("V"),
		Name:      in.Name,
		Contact:   in.Contact,
		VisitDate: dates.FromTime(s.now()),
		Interest:  in.Interest,
		Status:    status,
		Notes:     in.Notes,
	}
	if err := s.store.SaveVisitor(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visitor: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("visitor recorded", "visitor_id", v.ID, "status", v.Status)
	return v, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*models.Visitor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	v, err := s.store.GetVisitor(ctx, id)
	if err != nil {
		return nil, err
	}

	v.Name = in.Name
	v.Contact = in.Contact
	v.Interest = in.Interest
	if in.Status != "" {
		v.Status = in.Status
	}
	v.Notes = in.Notes

	if err := s.store.SaveVisitor(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visitor: %w", err)
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Visitor, error) {
	return s.store.GetVisitor(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*models.Visitor, error) {
	return s.store.ListVisitors(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteVisitor(ctx, id)
}
