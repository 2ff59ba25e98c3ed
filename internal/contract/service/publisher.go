package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freightrate/internal/cache"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Publish moves a draft version to Published. Publishing an already published
// version is a no-op.
func (s *Service) Publish(ctx context.Context, req contractdomain.PublishRequest) (*contractdomain.ContractVersion, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.VersionID))
	if err != nil {
		return nil, contractdomain.ErrInvalidVersionID
	}

	var published *contractdomain.ContractVersion
	changed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := s.repo.FindVersionByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if version == nil {
			return contractdomain.ErrVersionNotFound
		}
		if version.Status == contractdomain.StatusPublished {
			published = version
			return nil
		}

		contract, err := s.repo.FindContractByID(ctx, tx, version.ContractID)
		if err != nil {
			return err
		}
		if contract == nil {
			return contractdomain.ErrContractNotFound
		}

		now := s.clock.Now()
		if err := s.repo.MarkVersionPublished(ctx, tx, version.ID, now); err != nil {
			return err
		}
		if err := s.repo.UpdateContractStatus(ctx, tx, contract.ID, contractdomain.StatusPublished, now); err != nil {
			return err
		}

		entry := &contractdomain.ContractStatusHistory{
			ID:                s.genID.Generate(),
			ContractID:        contract.ID,
			ContractVersionID: version.ID,
			FromStatus:        version.Status,
			ToStatus:          contractdomain.StatusPublished,
			ChangedAt:         now,
			UserID:            optional(req.UserID),
			Note:              optional(req.Note),
		}
		if err := s.repo.InsertStatusHistory(ctx, tx, entry); err != nil {
			return err
		}

		if _, err := cache.BumpNamespace(ctx, tx, s.genID.Generate(), cache.NamespacePricing, req.UserID, req.Note, now); err != nil {
			return err
		}

		version.Status = contractdomain.StatusPublished
		version.PublishedAt = &now
		published = version
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("reference cache invalidation failed", zap.Error(err))
		}
		s.log.Info("contract version published",
			zap.String("version_id", published.ID.String()),
			zap.String("contract_id", published.ContractID.String()),
		)
	}
	return published, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
