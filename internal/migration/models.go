package migration

import (
	accessorialdomain "github.com/smallbiznis/freightrate/internal/accessorial/domain"
	"github.com/smallbiznis/freightrate/internal/cache"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	discountdomain "github.com/smallbiznis/freightrate/internal/discount/domain"
	fueldomain "github.com/smallbiznis/freightrate/internal/fuel/domain"
	geographydomain "github.com/smallbiznis/freightrate/internal/geography/domain"
	lanedomain "github.com/smallbiznis/freightrate/internal/lane/domain"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
)

// Models lists every table in dependency order. AutoMigrate uses it for the
// embedded databases; postgres runs the SQL migrations instead.
func Models() []any {
	return []any{
		&contractdomain.Account{},
		&contractdomain.Provider{},
		&contractdomain.Contract{},
		&contractdomain.ContractVersion{},
		&contractdomain.ContractStatusHistory{},
		&geographydomain.GeoZipZone{},
		&lanedomain.ContractLaneEligibility{},
		&linehauldomain.LtlBaseRate{},
		&linehauldomain.FtlLaneRate{},
		&linehauldomain.FclContainerRate{},
		&linehauldomain.LclRate{},
		&discountdomain.LtlDiscountRule{},
		&accessorialdomain.Accessorial{},
		&accessorialdomain.ContractAccessorialCharge{},
		&fueldomain.FuelSchedule{},
		&fueldomain.FuelScheduleRow{},
		&fueldomain.ContractFuelRule{},
		&ratequotedomain.EdiChargeCode{},
		&ratequotedomain.RateQuote{},
		&ratequotedomain.RateQuoteResult{},
		&ratequotedomain.RateQuoteChargeLine{},
		&cache.CacheNamespace{},
	}
}
