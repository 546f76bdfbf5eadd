package models

import (
	"testing"
	"time"

	"snapbooth/internal/domain"
)

func TestVoucherDiscountedPrice(t *testing.T) {
	cases := []struct {
		name  string
		vtype string
		value int64
		price int64
		want  int64
	}{
		{"percent half", domain.VoucherTypePercent, 50, 50000, 25000},
		{"percent full", domain.VoucherTypePercent, 100, 50000, 0},
		{"fixed", domain.VoucherTypeFixed, 10000, 50000, 40000},
		{"fixed exceeds price", domain.VoucherTypeFixed, 60000, 50000, 0},
		{"unknown type no-op", "bogus", 50, 50000, 50000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Voucher{Type: tc.vtype, Value: tc.value}
			if got := v.DiscountedPrice(tc.price); got != tc.want {
				t.Errorf("DiscountedPrice(%d) = %d, want %d", tc.price, got, tc.want)
			}
		})
	}
}

func TestVoucherIsRedeemable(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		v    Voucher
		want bool
	}{
		{"active with quota", Voucher{IsActive: true, Quota: 1}, true},
		{"inactive", Voucher{IsActive: false, Quota: 1}, false},
		{"no quota", Voucher{IsActive: true, Quota: 0}, false},
		{"expired", Voucher{IsActive: true, Quota: 1, ExpiresAt: &past}, false},
		{"not yet expired", Voucher{IsActive: true, Quota: 1, ExpiresAt: &future}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.IsRedeemable(now); got != tc.want {
				t.Errorf("IsRedeemable = %v, want %v", got, tc.want)
			}
		})
	}
}
