package service

import "github.com/shopspring/decimal"

var (
	minorUnitsPerMajor = decimal.NewFromInt(100)
	microsPerMajor     = decimal.NewFromInt(1_000_000)
)

// ToMinorUnits converte moeda decimal para centavos, arredondando metade para
// longe de zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitsPerMajor).Round(0).IntPart()
}

// FromMinorUnits converte centavos para moeda decimal.
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.NewFromInt(units).Div(minorUnitsPerMajor)
}

// ToMicros converte moeda decimal para micro-unidades (×1.000.000).
func ToMicros(amount decimal.Decimal) int64 {
	return amount.Mul(microsPerMajor).Round(0).IntPart()
}

// FromMicros converte micro-unidades para moeda decimal.
func FromMicros(micros int64) decimal.Decimal {
	return decimal.NewFromInt(micros).Div(microsPerMajor)
}
