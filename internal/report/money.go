package report

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
)

// Currency is the code all amounts are displayed in.
const Currency = "ZAR"

// Rand formats an amount as South African rand, rounded to the cent.
func Rand(amount float64) string {
	return money.New(int64(math.Round(amount*100)), Currency).Display()
}

// Pct formats a fraction as a signed percentage.
func Pct(fraction float64) string {
	return fmt.Sprintf("%+.2f%%", fraction*100)
}
