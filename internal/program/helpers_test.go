package program

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/models"

	"github.com/stretchr/testify/require"
)

const (
	owner        = "owner-wallet"
	feeRecipient = "platform-wallet"
	alice        = "alice-wallet"
	bob          = "bob-wallet"
)

var (
	errInsufficientFunds = errors.New("insufficient funds")
	errBankDown          = errors.New("bank unavailable")
	testNow              = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

// memoryBank is an in-memory Bank; failOnKind makes a transfer of that kind fail.
type memoryBank struct {
	balances   map[string]uint64
	transfers  []models.Transfer
	failOnKind string
}

func newMemoryBank(funded map[string]uint64) *memoryBank {
	b := &memoryBank{balances: map[string]uint64{}}
	for k, v := range funded {
		b.balances[k] = v
	}
	return b
}

func (b *memoryBank) Balance(_ context.Context, account string) (uint64, error) {
	return b.balances[account], nil
}

func (b *memoryBank) Transfer(_ context.Context, kind, from, to string, amount uint64) (*models.Transfer, error) {
	if kind == b.failOnKind {
		return nil, errBankDown
	}
	if b.balances[from] < amount {
		return nil, fmt.Errorf("%w: %s holds %d", errInsufficientFunds, from, b.balances[from])
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	t := models.Transfer{Kind: kind, From: from, To: to, Amount: amount}
	b.transfers = append(b.transfers, t)
	return &t, nil
}

func newTestEnv(bank Bank, signers ...string) *Env {
	return &Env{
		Clock:   FixedClock(testNow),
		Signers: NewSignerSet(signers...),
		Bank:    bank,
		Fees:    DefaultFeeSchedule(),
	}
}

func (e *Env) at(t time.Time) *Env {
	out := *e
	out.Clock = FixedClock(t)
	return &out
}

func (e *Env) signedBy(signers ...string) *Env {
	out := *e
	out.Signers = NewSignerSet(signers...)
	return &out
}

func newDraftCampaign(t *testing.T, env *Env, softCap, hardCap uint64) *models.Campaign {
	t.Helper()
	c, err := CreateCampaign(context.Background(), env, CreateParams{
		Id:           42,
		SoftCap:      softCap,
		HardCap:      hardCap,
		Deadline:     testNow.Add(time.Hour),
		Owner:        owner,
		FeeRecipient: feeRecipient,
	})
	require.NoError(t, err)
	return c
}

func newLiveCampaign(t *testing.T, env *Env, softCap, hardCap uint64, tiers ...models.Tier) *models.Campaign {
	t.Helper()
	ctx := context.Background()
	c := newDraftCampaign(t, env, softCap, hardCap)
	ownerEnv := env.signedBy(owner)
	for _, tier := range tiers {
		require.NoError(t, AddTier(ctx, ownerEnv, c, tier.TierId, tier.PledgeAmount))
	}
	require.NoError(t, Publish(ctx, ownerEnv, c))
	return c
}
