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

package api

import (
	"context"
	"fmt"

	"crowdfund-ledger-go/internal/models"

	"go.uber.org/zap"
)

// GetAccountBalance returns the native balance of an account
func (s *CampaignService) GetAccountBalance(ctx context.Context, address string) (*models.AccountBalance, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidRequest)
	}

	balance, err := s.store.GetAccountBalance(ctx, address)
	if err != nil {
		zap.L().Error("Failed to get account balance",
			zap.String("address", address),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve balance")
	}

	return balance, nil
}

// Airdrop funds an account with newly minted native tokens
func (s *CampaignService) Airdrop(ctx context.Context, address string, lamports uint64) (*models.Transfer, error) {
	if address == "" || lamports == 0 {
		return nil, fmt.Errorf("%w: address and a positive amount are required", ErrInvalidRequest)
	}

	transfer, err := s.store.Airdrop(ctx, address, lamports)
	if err != nil {
		zap.L().Error("Airdrop failed",
			zap.String("address", address),
			zap.Uint64("lamports", lamports),
			zap.Error(err))
		return nil, err
	}

	return transfer, nil
}
