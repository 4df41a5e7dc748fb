package service_test

import (
	"strings"
	"testing"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/config"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestPricing_ComputePrice(t *testing.T) {
	cfg := &config.Config{}
	cfg.Pricing.SMSUnit = 1.0
	cfg.Pricing.CallUnit = 2.0
	cfg.Pricing.HumanUnit = 5.0

	svc := service.NewPricingService(cfg)

	t.Run("sms single segment", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderTypeSMS, "hello", "")
		assert.Equal(t, "1", price.String())
	})

	t.Run("sms exactly one segment boundary", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderTypeSMS, strings.Repeat("a", 37), "")
		assert.Equal(t, "1", price.String())
	})

	t.Run("sms one rune past the boundary bills two segments", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderTypeSMS, strings.Repeat("a", 38), "")
		assert.Equal(t, "2", price.String())
	})

	t.Run("sms counts runes not bytes", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderTypeSMS, strings.Repeat("好", 37), "")
		assert.Equal(t, "1", price.String())

		price = svc.ComputePrice(model.OrderTypeSMS, strings.Repeat("好", 38), "")
		assert.Equal(t, "2", price.String())
	})

	t.Run("sms empty content is free", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderTypeSMS, "", "")
		assert.True(t, price.IsZero())
	})

	t.Run("call is flat regardless of content", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderTypeCall, strings.Repeat("a", 500), "")
		assert.Equal(t, "2", price.String())
	})

	t.Run("human relay is flat", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderTypeHuman, "hello", "微信")
		assert.Equal(t, "5", price.String())
	})

	t.Run("human relay via other platform is free", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderTypeHuman, "hello", service.ContactMethodOtherPlatform)
		assert.True(t, price.IsZero())
	})

	t.Run("unknown type prices to zero", func(t *testing.T) {
		price := svc.ComputePrice(model.OrderType("fax"), "hello", "")
		assert.True(t, price.IsZero())
	})
}
