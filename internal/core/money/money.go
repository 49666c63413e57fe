// Package money holds the amount input and display helpers shared by the
// ledger and budget packages.
package money

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Input is an amount as submitted by a client. It accepts a JSON number or a
// JSON string so that malformed values can be reported per row instead of
// failing the whole request body.
type Input string

func (in *Input) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*in = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*in = Input(s)
		return nil
	}
	*in = Input(data)
	return nil
}

func (in Input) IsBlank() bool {
	return strings.TrimSpace(string(in)) == ""
}

// Parse reads the amount. Sign is not checked.
func (in Input) Parse() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(string(in)))
}

// Format renders an amount with two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
