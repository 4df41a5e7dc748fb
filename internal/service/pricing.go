package service

import (
	"unicode/utf8"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/config"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// smsSegmentRunes is the billable segment size for relayed short messages.
const smsSegmentRunes = 37

// ContactMethodOtherPlatform marks human-relay orders arranged off-platform;
// they carry no charge.
const ContactMethodOtherPlatform = "其他平台"

// PricingService is the only source of order prices. Client-submitted price
// fields are never consulted anywhere.
type PricingService interface {
	ComputePrice(orderType model.OrderType, content, contactMethod string) decimal.Decimal
}

type pricing struct {
	smsUnit   decimal.Decimal
	callUnit  decimal.Decimal
	humanUnit decimal.Decimal
}

func NewPricingService(cfg *config.Config) PricingService {
	return &pricing{
		smsUnit:   decimal.NewFromFloat(cfg.Pricing.SMSUnit),
		callUnit:  decimal.NewFromFloat(cfg.Pricing.CallUnit),
		humanUnit: decimal.NewFromFloat(cfg.Pricing.HumanUnit),
	}
}

func (p *pricing) ComputePrice(orderType model.OrderType, content, contactMethod string) decimal.Decimal {
	switch orderType {
	case model.OrderTypeSMS:
		runes := utf8.RuneCountInString(content)
		if runes == 0 {
			return decimal.Zero.Round(2)
		}
		segments := (runes + smsSegmentRunes - 1) / smsSegmentRunes
		return p.smsUnit.Mul(decimal.NewFromInt(int64(segments))).Round(2)

	case model.OrderTypeCall:
		return p.callUnit.Round(2)

	case model.OrderTypeHuman:
		if contactMethod == ContactMethodOtherPlatform {
			return decimal.Zero.Round(2)
		}
		return p.humanUnit.Round(2)

	default:
		return decimal.Zero.Round(2)
	}
}
