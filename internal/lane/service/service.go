package service

import (
	"context"

	lanedomain "github.com/smallbiznis/freightrate/internal/lane/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo lanedomain.Repository
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo lanedomain.Repository
}

func New(p Params) lanedomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("lane.service"),
		repo: p.Repo,
	}
}

// Check reports whether any eligibility row of the version permits the lane.
func (s *Service) Check(ctx context.Context, q lanedomain.Query) (bool, error) {
	rows, err := s.repo.ListByVersionAndMode(ctx, s.db, q.VersionID, q.Mode.String())
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.Matches(q) {
			s.log.Debug("lane eligible", zap.String("rule_id", row.ID.String()))
			return true, nil
		}
	}
	return false, nil
}
