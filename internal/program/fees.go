/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package program

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// DefaultFeePercent is the platform share of a successful campaign
const DefaultFeePercent int64 = 10

// FeeSchedule splits a payout between the campaign owner and the fee recipient.
// The fee is floor(amount * percent / 100); the remainder goes to the owner, so
// the two parts always sum to the amount.
type FeeSchedule struct {
	Percent decimal.Decimal
}

func NewFeeSchedule(percent decimal.Decimal) (FeeSchedule, error) {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return FeeSchedule{}, fmt.Errorf("fee percent must be within [0, 100], got %s", percent.String())
	}
	return FeeSchedule{Percent: percent}, nil
}

// DefaultFeeSchedule charges DefaultFeePercent
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{Percent: decimal.NewFromInt(DefaultFeePercent)}
}

// Split returns the owner and fee shares of amount
func (f FeeSchedule) Split(amount uint64) (owner uint64, fee uint64) {
	total := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
	feeShare := total.Mul(f.Percent).Shift(-2).Floor()
	fee = feeShare.BigInt().Uint64()
	if fee > amount {
		fee = amount
	}
	return amount - fee, fee
}
