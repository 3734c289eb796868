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
	"context"
	"time"

	"crowdfund-ledger-go/internal/models"
)

// Clock is the execution-time clock compared against campaign deadlines
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always reports the same instant
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Authenticator answers whether an identity signed the current instruction.
// Signature verification itself happens outside the program.
type Authenticator interface {
	IsSigner(identity string) bool
}

// SignerSet is the set of identities that signed an instruction
type SignerSet map[string]struct{}

func NewSignerSet(identities ...string) SignerSet {
	s := make(SignerSet, len(identities))
	for _, id := range identities {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s SignerSet) IsSigner(identity string) bool {
	_, ok := s[identity]
	return ok
}

// Bank moves native tokens between accounts. Implementations must make every
// transfer part of the same atomic unit as the instruction that requested it.
type Bank interface {
	Balance(ctx context.Context, account string) (uint64, error)
	Transfer(ctx context.Context, kind, from, to string, amount uint64) (*models.Transfer, error)
}

// Env is the execution context handed to every operation
type Env struct {
	Clock   Clock
	Signers Authenticator
	Bank    Bank
	Fees    FeeSchedule
}

func (e *Env) now() time.Time {
	if e.Clock == nil {
		return SystemClock.Now()
	}
	return e.Clock.Now()
}

func (e *Env) signed(identity string) bool {
	return e.Signers != nil && identity != "" && e.Signers.IsSigner(identity)
}
