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

package mirror

import (
	"context"
	"fmt"
	"time"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/store"

	"go.uber.org/zap"
)

const defaultBatchSize = 100

// TransferSource is the part of the runtime the mirror reads from
type TransferSource interface {
	ListUnmirroredTransfers(ctx context.Context, limit int) ([]models.Transfer, error)
	MarkTransferMirrored(ctx context.Context, transferId string) error
}

// TransferMirrorConfig contains configuration for TransferMirror
type TransferMirrorConfig struct {
	Source          TransferSource
	Journal         store.TransferJournal
	PollingInterval time.Duration
	BatchSize       int
}

// TransferMirror copies committed transfers to an external journal in commit
// order. A transfer is marked mirrored only after the journal accepted it, and
// the journal deduplicates by transfer id, so a crash between the two steps
// only causes a harmless replay.
type TransferMirror struct {
	source  TransferSource
	journal store.TransferJournal

	pollingInterval time.Duration
	batchSize       int

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewTransferMirror creates a new transfer mirror
func NewTransferMirror(cfg TransferMirrorConfig) *TransferMirror {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &TransferMirror{
		source:          cfg.Source,
		journal:         cfg.Journal,
		pollingInterval: cfg.PollingInterval,
		batchSize:       batchSize,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start catches up on every pending transfer and then keeps polling
func (m *TransferMirror) Start(ctx context.Context) error {
	zap.L().Info("Starting transfer mirror")

	if m.pollingInterval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %v", m.pollingInterval)
	}

	// Startup catch-up for transfers committed while the mirror was down
	mirrored, err := m.SyncOnce(ctx)
	if err != nil {
		zap.L().Error("Startup catch-up failed", zap.Int("mirrored", mirrored), zap.Error(err))
		return fmt.Errorf("startup catch-up failed: %w", err)
	}

	go m.pollLoop(ctx)

	zap.L().Info("Transfer mirror started successfully",
		zap.Int("caught_up", mirrored),
		zap.Duration("polling_interval", m.pollingInterval),
		zap.Int("batch_size", m.batchSize))
	return nil
}

// Stop gracefully stops the mirror
func (m *TransferMirror) Stop() {
	zap.L().Info("Stopping transfer mirror")
	close(m.stopChan)
	<-m.doneChan
	zap.L().Info("Transfer mirror stopped")
}

// pollLoop runs the main polling loop
func (m *TransferMirror) pollLoop(ctx context.Context) {
	defer close(m.doneChan)

	ticker := time.NewTicker(m.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if mirrored, err := m.SyncOnce(ctx); err != nil {
				zap.L().Error("Mirror pass failed", zap.Int("mirrored", mirrored), zap.Error(err))
			} else if mirrored > 0 {
				zap.L().Info("Mirror pass completed", zap.Int("mirrored", mirrored))
			}
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// SyncOnce mirrors pending transfers batch by batch until none remain. It
// stops at the first transfer the journal rejects so later transfers are
// never posted ahead of it, and returns how many transfers were mirrored.
func (m *TransferMirror) SyncOnce(ctx context.Context) (int, error) {
	var mirrored int
	for {
		batch, err := m.source.ListUnmirroredTransfers(ctx, m.batchSize)
		if err != nil {
			return mirrored, fmt.Errorf("failed to list unmirrored transfers: %w", err)
		}

		for _, transfer := range batch {
			if err := ctx.Err(); err != nil {
				return mirrored, err
			}
			if err := m.journal.RecordTransfer(ctx, transfer); err != nil {
				return mirrored, fmt.Errorf("failed to mirror transfer %s: %w", transfer.Id, err)
			}
			if err := m.source.MarkTransferMirrored(ctx, transfer.Id); err != nil {
				return mirrored, fmt.Errorf("failed to mark transfer %s mirrored: %w", transfer.Id, err)
			}
			mirrored++

			zap.L().Debug("Transfer mirrored",
				zap.String("transfer_id", transfer.Id),
				zap.String("kind", transfer.Kind),
				zap.String("campaign", transfer.Campaign),
				zap.Uint64("amount", transfer.Amount))
		}

		if len(batch) < m.batchSize {
			return mirrored, nil
		}
	}
}
