package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"go.uber.org/zap"
)

// Resolve walks account, contract and published version. Anything missing is
// recorded on the sheet; only store failures are returned.
func (s *Service) Resolve(ctx context.Context, req contractdomain.ResolveRequest, sheet *ratingdomain.Sheet) (contractdomain.Resolution, error) {
	var res contractdomain.Resolution

	contract, account, err := s.resolveContract(ctx, req, sheet)
	if err != nil {
		return res, err
	}
	res.Account = account
	res.Contract = contract
	if contract == nil {
		return res, nil
	}

	version, err := s.repo.FindPublishedVersion(ctx, s.db, contract.ID, req.ShipDate)
	if err != nil {
		return res, err
	}
	if version == nil {
		sheet.Warnf("No published contract version for contract %s effective %s.", contract.ID, req.ShipDate.Format("2006-01-02"))
		return res, nil
	}
	res.Version = version

	s.log.Debug("contract resolved",
		zap.String("contract_id", contract.ID.String()),
		zap.String("version_id", version.ID.String()),
		zap.Int("version_no", version.VersionNo),
	)
	return res, nil
}

func (s *Service) resolveContract(ctx context.Context, req contractdomain.ResolveRequest, sheet *ratingdomain.Sheet) (*contractdomain.Contract, *contractdomain.Account, error) {
	if raw := strings.TrimSpace(req.ContractID); raw != "" {
		return s.loadExplicitContract(ctx, raw, req.Mode, sheet)
	}

	code := strings.TrimSpace(req.CustomerID)
	if code == "" {
		sheet.Warn("No customer or contract id supplied; contract could not be resolved.")
		return nil, nil, nil
	}

	account, err := s.accountRepo.FindOne(ctx, &contractdomain.Account{Code: code})
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		sheet.Warnf("Account '%s' not found.", code)
		return nil, nil, nil
	}

	contract, err := s.repo.FindLatestActiveContract(ctx, s.db, account.ID, req.Mode.String())
	if err != nil {
		return nil, account, err
	}
	if contract == nil {
		sheet.Warnf("No active %s contract for account '%s'.", req.Mode, code)
		return nil, account, nil
	}
	return contract, account, nil
}

func (s *Service) loadExplicitContract(ctx context.Context, raw string, mode ratingdomain.Mode, sheet *ratingdomain.Sheet) (*contractdomain.Contract, *contractdomain.Account, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		sheet.Warnf("Contract id '%s' is not a valid identifier.", raw)
		return nil, nil, nil
	}

	contract, err := s.repo.FindContractByID(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	if contract == nil {
		sheet.Warnf("Contract %s not found.", raw)
		return nil, nil, nil
	}
	if !strings.EqualFold(contract.Mode, mode.String()) {
		sheet.Warnf("Contract %s is priced for %s, not %s.", raw, contract.Mode, mode)
	}

	if contract.AccountID == nil {
		return contract, nil, nil
	}
	account, err := s.accountRepo.FindOne(ctx, &contractdomain.Account{ID: *contract.AccountID})
	if err != nil {
		return contract, nil, err
	}
	return contract, account, nil
}
