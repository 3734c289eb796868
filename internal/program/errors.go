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
	"errors"
	"fmt"
)

// ErrorKind classifies every way an instruction can be rejected by the program
type ErrorKind uint8

const (
	KindUnauthorized ErrorKind = iota + 1
	KindProjectNotInDraft
	KindMaxContributionTiersReached
	KindDuplicateTier
	KindInvalidAmount
	KindNoContributionTiers
	KindProjectNotLive
	KindTierNotFound
	KindAmountMismatch
	KindHardCapReached
	KindDeadlineNotReached
	KindDeadlinePassed
	KindAlreadyFinalized
	KindProjectNotSuccessful
	KindProjectNotFailing
	KindContributionNotFound
	KindAlreadyRefunded
	KindInsufficientEscrow
)

var kindNames = map[ErrorKind]string{
	KindUnauthorized:                "Unauthorized",
	KindProjectNotInDraft:           "ProjectNotInDraft",
	KindMaxContributionTiersReached: "MaxContributionTiersReached",
	KindDuplicateTier:               "DuplicateTier",
	KindInvalidAmount:               "InvalidAmount",
	KindNoContributionTiers:         "NoContributionTiers",
	KindProjectNotLive:              "ProjectNotLive",
	KindTierNotFound:                "TierNotFound",
	KindAmountMismatch:              "AmountMismatch",
	KindHardCapReached:              "HardCapReached",
	KindDeadlineNotReached:          "DeadlineNotReached",
	KindDeadlinePassed:              "DeadlinePassed",
	KindAlreadyFinalized:            "AlreadyFinalized",
	KindProjectNotSuccessful:        "ProjectNotSuccessful",
	KindProjectNotFailing:           "ProjectNotFailing",
	KindContributionNotFound:        "ContributionNotFound",
	KindAlreadyRefunded:             "AlreadyRefunded",
	KindInsufficientEscrow:          "InsufficientEscrow",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is a rejected instruction. Two errors match under errors.Is when their
// kinds are equal, so callers compare against the sentinels below.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel errors, one per kind
var (
	ErrUnauthorized                = &Error{Kind: KindUnauthorized}
	ErrProjectNotInDraft           = &Error{Kind: KindProjectNotInDraft}
	ErrMaxContributionTiersReached = &Error{Kind: KindMaxContributionTiersReached}
	ErrDuplicateTier               = &Error{Kind: KindDuplicateTier}
	ErrInvalidAmount               = &Error{Kind: KindInvalidAmount}
	ErrNoContributionTiers         = &Error{Kind: KindNoContributionTiers}
	ErrProjectNotLive              = &Error{Kind: KindProjectNotLive}
	ErrTierNotFound                = &Error{Kind: KindTierNotFound}
	ErrAmountMismatch              = &Error{Kind: KindAmountMismatch}
	ErrHardCapReached              = &Error{Kind: KindHardCapReached}
	ErrDeadlineNotReached          = &Error{Kind: KindDeadlineNotReached}
	ErrDeadlinePassed              = &Error{Kind: KindDeadlinePassed}
	ErrAlreadyFinalized            = &Error{Kind: KindAlreadyFinalized}
	ErrProjectNotSuccessful        = &Error{Kind: KindProjectNotSuccessful}
	ErrProjectNotFailing           = &Error{Kind: KindProjectNotFailing}
	ErrContributionNotFound        = &Error{Kind: KindContributionNotFound}
	ErrAlreadyRefunded             = &Error{Kind: KindAlreadyRefunded}
	ErrInsufficientEscrow          = &Error{Kind: KindInsufficientEscrow}
)

// KindOf extracts the ErrorKind from err, or 0 when err is not a program error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
