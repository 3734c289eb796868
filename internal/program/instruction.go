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
	"errors"
	"fmt"

	"crowdfund-ledger-go/internal/models"
)

// InstructionKind names one entry of the instruction surface
type InstructionKind string

const (
	IxCreateCampaign InstructionKind = "create_campaign"
	IxAddTier        InstructionKind = "add_tier"
	IxPublish        InstructionKind = "publish"
	IxContribute     InstructionKind = "contribute"
	IxFinalize       InstructionKind = "finalize"
	IxRefund         InstructionKind = "refund"
	IxRefundAll      InstructionKind = "refund_all"
)

// ErrUnknownInstruction is returned for an instruction kind the program does not implement
var ErrUnknownInstruction = errors.New("unknown instruction")

// Instruction is one request against a single campaign account. Campaign is
// the derived address of the target and is ignored by create_campaign, whose
// address follows from Create.
type Instruction struct {
	Kind              InstructionKind
	Campaign          string
	Signers           []string
	Create            *CreateParams
	TierId            uint64
	Amount            uint64
	Contributor       string
	ContributionIndex int
}

// Target returns the account address the instruction executes against
func (ix Instruction) Target() (string, error) {
	if ix.Kind == IxCreateCampaign {
		if ix.Create == nil {
			return "", fmt.Errorf("%s requires campaign parameters", ix.Kind)
		}
		return DeriveAddress(ix.Create.Id, ix.Create.Owner), nil
	}
	if ix.Campaign == "" {
		return "", fmt.Errorf("%s requires a campaign address", ix.Kind)
	}
	return ix.Campaign, nil
}

// Outcome describes the effect of an executed instruction
type Outcome struct {
	Campaign     *models.Campaign
	StatusBefore models.Status
	StatusAfter  models.Status
	Contribution *models.Contribution
	Refunded     []models.Contribution
	Finalize     *FinalizeResult
}

// Execute dispatches ix against campaign c, which must be nil only for
// create_campaign. On error c may hold partial changes and must be discarded
// together with every transfer made through env.Bank.
func Execute(ctx context.Context, env *Env, c *models.Campaign, ix Instruction) (*Outcome, error) {
	if ix.Kind == IxCreateCampaign {
		if ix.Create == nil {
			return nil, fmt.Errorf("%s requires campaign parameters", ix.Kind)
		}
		created, err := CreateCampaign(ctx, env, *ix.Create)
		if err != nil {
			return nil, err
		}
		return &Outcome{Campaign: created, StatusBefore: created.Status, StatusAfter: created.Status}, nil
	}
	if c == nil {
		return nil, fmt.Errorf("%s requires an existing campaign", ix.Kind)
	}

	out := &Outcome{Campaign: c, StatusBefore: c.Status}
	var err error

	switch ix.Kind {
	case IxAddTier:
		err = AddTier(ctx, env, c, ix.TierId, ix.Amount)
	case IxPublish:
		err = Publish(ctx, env, c)
	case IxContribute:
		out.Contribution, err = Contribute(ctx, env, c, ix.Contributor, ix.TierId, ix.Amount)
	case IxFinalize:
		out.Finalize, err = Finalize(ctx, env, c)
	case IxRefund:
		var refunded *models.Contribution
		if refunded, err = Refund(ctx, env, c, ix.Contributor, ix.ContributionIndex, ix.Amount); err == nil {
			out.Refunded = []models.Contribution{*refunded}
		}
	case IxRefundAll:
		out.Refunded, _, err = RefundAll(ctx, env, c, ix.Contributor)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstruction, ix.Kind)
	}
	if err != nil {
		return nil, err
	}

	out.StatusAfter = c.Status
	return out, nil
}
