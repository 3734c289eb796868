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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"crowdfund-ledger-go/internal/common"
	"crowdfund-ledger-go/internal/config"
	"crowdfund-ledger-go/internal/program"

	"go.uber.org/zap"
)

type campaignFlags struct {
	op           string
	campaign     string
	id           uint64
	owner        string
	feeRecipient string
	softCap      string
	hardCap      string
	deadline     string
	tier         uint64
	amount       string
	contributor  string
	index        int
	signers      string
}

var ops = map[string]program.InstructionKind{
	"create":     program.IxCreateCampaign,
	"add-tier":   program.IxAddTier,
	"publish":    program.IxPublish,
	"contribute": program.IxContribute,
	"finalize":   program.IxFinalize,
	"refund":     program.IxRefund,
	"refund-all": program.IxRefundAll,
}

func parseFlags() *campaignFlags {
	f := &campaignFlags{}
	flag.StringVar(&f.op, "op", "", "Instruction: create, add-tier, publish, contribute, finalize, refund, refund-all (required)")
	flag.StringVar(&f.campaign, "campaign", "", "Campaign address (required except for create)")
	flag.Uint64Var(&f.id, "id", 0, "Campaign id (create)")
	flag.StringVar(&f.owner, "owner", "", "Campaign owner (create)")
	flag.StringVar(&f.feeRecipient, "fee-recipient", "", "Platform fee recipient (create)")
	flag.StringVar(&f.softCap, "soft-cap", "", "Soft cap in native tokens (create)")
	flag.StringVar(&f.hardCap, "hard-cap", "", "Hard cap in native tokens (create)")
	flag.StringVar(&f.deadline, "deadline", "", "Deadline as RFC 3339 timestamp or duration from now, e.g. 72h (create)")
	flag.Uint64Var(&f.tier, "tier", 0, "Tier id (add-tier, contribute)")
	flag.StringVar(&f.amount, "amount", "", "Amount in native tokens (add-tier, contribute, refund)")
	flag.StringVar(&f.contributor, "contributor", "", "Contributor account (contribute, refund, refund-all)")
	flag.IntVar(&f.index, "index", 0, "Contribution index (refund)")
	flag.StringVar(&f.signers, "signer", "", "Comma separated signer identities")
	flag.Parse()
	return f
}

func parseDeadline(value string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q", value)
	}
	return t, nil
}

func optionalTokens(value string) (uint64, error) {
	if value == "" {
		return 0, nil
	}
	return common.ParseTokens(value)
}

func buildInstruction(f *campaignFlags, now time.Time) (program.Instruction, error) {
	kind, ok := ops[f.op]
	if !ok {
		return program.Instruction{}, fmt.Errorf("unknown -op %q", f.op)
	}

	ix := program.Instruction{
		Kind:              kind,
		Campaign:          f.campaign,
		TierId:            f.tier,
		Contributor:       f.contributor,
		ContributionIndex: f.index,
	}
	for _, s := range strings.Split(f.signers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ix.Signers = append(ix.Signers, s)
		}
	}

	amount, err := optionalTokens(f.amount)
	if err != nil {
		return ix, err
	}
	ix.Amount = amount

	if kind != program.IxCreateCampaign {
		if f.campaign == "" {
			return ix, fmt.Errorf("-campaign is required for %s", f.op)
		}
		return ix, nil
	}

	softCap, err := optionalTokens(f.softCap)
	if err != nil {
		return ix, err
	}
	hardCap, err := optionalTokens(f.hardCap)
	if err != nil {
		return ix, err
	}
	deadline, err := parseDeadline(f.deadline, now)
	if err != nil {
		return ix, err
	}
	ix.Create = &program.CreateParams{
		Id:           f.id,
		SoftCap:      softCap,
		HardCap:      hardCap,
		Deadline:     deadline,
		Owner:        f.owner,
		FeeRecipient: f.feeRecipient,
	}
	return ix, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	f := parseFlags()
	ix, err := buildInstruction(f, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	receipt, err := dbService.Submit(ctx, ix)
	if err != nil {
		if kind := program.KindOf(err); kind != 0 {
			logger.Error("Instruction rejected", zap.String("error_kind", kind.String()), zap.Error(err))
		} else {
			logger.Error("Instruction failed", zap.Error(err))
		}
		return
	}

	output, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		logger.Error("Error marshaling receipt to JSON", zap.Error(err))
		return
	}

	common.PrintHeader(fmt.Sprintf("%s %s", strings.ToUpper(receipt.Kind), receipt.Campaign), common.DefaultWidth)
	fmt.Println(string(output))
	common.PrintFooter(fmt.Sprintf("Status: %s -> %s", receipt.StatusBefore, receipt.StatusAfter), common.DefaultWidth)
}
