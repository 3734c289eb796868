package program

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContribute_HardCapScenario(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 10_000})
	env := newTestEnv(bank, alice)
	c := newLiveCampaign(t, env, 1000, 5000, models.Tier{TierId: 1, PledgeAmount: 2500})

	first, err := Contribute(ctx, env, c, alice, 1, 2500)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, models.StatusPublished, c.Status)

	second, err := Contribute(ctx, env, c, alice, 1, 2500)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, uint64(5000), c.TotalRaised)
	assert.Equal(t, models.StatusSuccessful, c.Status)

	_, err = Contribute(ctx, env, c, alice, 1, 2500)
	require.Error(t, err)
	assert.Contains(t, []ErrorKind{KindProjectNotLive, KindHardCapReached}, KindOf(err))

	assert.Equal(t, uint64(5000), c.TotalRaised)
	assert.Equal(t, uint64(5000), bank.balances[c.Address])
	assert.Equal(t, uint64(5000), bank.balances[alice])
	require.NoError(t, Reconcile(c))
}

func TestContribute_HardCapReachedLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 10_000, bob: 10_000})
	env := newTestEnv(bank, alice, bob)
	c := newLiveCampaign(t, env, 1000, 5000, models.Tier{TierId: 1, PledgeAmount: 3000})

	_, err := Contribute(ctx, env, c, alice, 1, 3000)
	require.NoError(t, err)
	snapshot := c.Clone()

	_, err = Contribute(ctx, env, c, bob, 1, 3000)
	assert.ErrorIs(t, err, ErrHardCapReached)

	assert.Equal(t, snapshot, c)
	assert.Len(t, c.Contributions, 1)
	assert.Equal(t, uint64(3000), c.TotalRaised)
	assert.Equal(t, uint64(10_000), bank.balances[bob])
	assert.Equal(t, models.StatusPublished, c.Status)
}

func TestContribute_AmountMismatchRegardlessOfStatus(t *testing.T) {
	ctx := context.Background()
	statuses := []models.Status{
		models.StatusDraft,
		models.StatusPublished,
		models.StatusSuccessful,
		models.StatusFailing,
		models.StatusFinalized,
	}
	for _, status := range statuses {
		t.Run(status.String(), func(t *testing.T) {
			bank := newMemoryBank(map[string]uint64{alice: 10_000})
			env := newTestEnv(bank, alice, owner)
			c := newDraftCampaign(t, env, 100, 200)
			require.NoError(t, AddTier(ctx, env, c, 1, 50))
			c.Status = status

			_, err := Contribute(ctx, env, c, alice, 1, 49)
			assert.ErrorIs(t, err, ErrAmountMismatch)
			assert.Empty(t, bank.transfers)
		})
	}
}

func TestContribute_Preconditions(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 10_000})
	env := newTestEnv(bank, alice, owner)

	draft := newDraftCampaign(t, env, 100, 200)
	require.NoError(t, AddTier(ctx, env, draft, 1, 50))
	_, err := Contribute(ctx, env, draft, alice, 1, 50)
	assert.ErrorIs(t, err, ErrProjectNotLive)

	live := newLiveCampaign(t, env, 100, 200, models.Tier{TierId: 1, PledgeAmount: 50})
	snapshot := live.Clone()

	_, err = Contribute(ctx, env, live, alice, 9, 50)
	assert.ErrorIs(t, err, ErrTierNotFound)

	_, err = Contribute(ctx, env.signedBy(bob), live, alice, 1, 50)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = Contribute(ctx, env.at(live.Deadline), live, alice, 1, 50)
	assert.ErrorIs(t, err, ErrDeadlinePassed)

	assert.Empty(t, bank.transfers)
	assert.Equal(t, snapshot, live)
}

func TestContribute_InsufficientFundsAbortsWithoutRecord(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 10})
	env := newTestEnv(bank, alice)
	c := newLiveCampaign(t, env, 100, 200, models.Tier{TierId: 1, PledgeAmount: 50})

	_, err := Contribute(ctx, env, c, alice, 1, 50)
	assert.ErrorIs(t, err, errInsufficientFunds)
	assert.Zero(t, KindOf(err))

	assert.Empty(t, c.Contributions)
	assert.Zero(t, c.TotalRaised)
	assert.Zero(t, c.EscrowBalance)
	require.NoError(t, Reconcile(c))
}

func TestContribute_TotalsReconcileAtEveryStep(t *testing.T) {
	ctx := context.Background()
	contributors := []string{alice, bob, "carol-wallet", "dave-wallet"}
	funded := map[string]uint64{}
	for _, who := range contributors {
		funded[who] = 1_000_000
	}
	bank := newMemoryBank(funded)
	env := newTestEnv(bank, contributors...)
	tiers := []models.Tier{{TierId: 1, PledgeAmount: 700}, {TierId: 2, PledgeAmount: 1300}, {TierId: 3, PledgeAmount: 2900}}
	c := newLiveCampaign(t, env, 5000, 20_000, tiers...)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		who := contributors[rng.Intn(len(contributors))]
		tier := tiers[rng.Intn(len(tiers))]
		step := env.at(testNow.Add(time.Duration(i) * time.Second))

		_, err := Contribute(ctx, step, c, who, tier.TierId, tier.PledgeAmount)
		if err != nil {
			assert.Contains(t, []ErrorKind{KindHardCapReached, KindProjectNotLive}, KindOf(err))
		}

		require.NoError(t, Reconcile(c), "after step %d", i)
		require.LessOrEqual(t, c.TotalRaised, c.HardCap)
		require.Equal(t, c.EscrowBalance, bank.balances[c.Address])
	}
}

func TestContribute_OverflowIsInvalidAmount(t *testing.T) {
	ctx := context.Background()
	bank := newMemoryBank(map[string]uint64{alice: 100})
	env := newTestEnv(bank, alice)
	c := newLiveCampaign(t, env, 1, ^uint64(0), models.Tier{TierId: 1, PledgeAmount: 100})
	c.TotalRaised = ^uint64(0) - 10

	_, err := Contribute(ctx, env, c, alice, 1, 100)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, uint64(100), bank.balances[alice])
}
