package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crowdfund-ledger-go/internal/program"

	"gopkg.in/yaml.v2"
)

type TierSeed struct {
	TierId       uint64 `yaml:"tier_id"`
	PledgeAmount uint64 `yaml:"pledge_amount"`
}

// CampaignSeed describes one campaign to create at setup time. Deadline is an
// RFC 3339 timestamp; Duration is relative to setup time and used when
// Deadline is empty.
type CampaignSeed struct {
	Id           uint64     `yaml:"id"`
	Owner        string     `yaml:"owner"`
	FeeRecipient string     `yaml:"fee_recipient"`
	SoftCap      uint64     `yaml:"soft_cap"`
	HardCap      uint64     `yaml:"hard_cap"`
	Deadline     string     `yaml:"deadline"`
	Duration     string     `yaml:"duration"`
	Publish      bool       `yaml:"publish"`
	Tiers        []TierSeed `yaml:"tiers"`
}

type CampaignsConfig struct {
	Campaigns []CampaignSeed `yaml:"campaigns"`
}

func LoadCampaignFile(campaignsFile string) ([]CampaignSeed, error) {
	var campaignsPath string
	if filepath.IsAbs(campaignsFile) {
		campaignsPath = campaignsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		campaignsPath = filepath.Join(wd, campaignsFile)
	}

	data, err := os.ReadFile(campaignsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", campaignsFile, err)
	}

	return ParseCampaigns(data)
}

func ParseCampaigns(data []byte) ([]CampaignSeed, error) {
	var config CampaignsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse campaigns: %w", err)
	}

	for i, c := range config.Campaigns {
		if c.Owner == "" {
			return nil, fmt.Errorf("campaign at index %d missing owner", i)
		}
		if c.FeeRecipient == "" {
			return nil, fmt.Errorf("campaign at index %d missing fee_recipient", i)
		}
		if c.Deadline == "" && c.Duration == "" {
			return nil, fmt.Errorf("campaign at index %d needs a deadline or a duration", i)
		}
	}

	return config.Campaigns, nil
}

// Instructions returns the create, add_tier and optional publish instructions
// that bring the seeded campaign to life
func (c CampaignSeed) Instructions(now time.Time) ([]program.Instruction, error) {
	deadline, err := c.deadline(now)
	if err != nil {
		return nil, err
	}

	create := &program.CreateParams{
		Id:           c.Id,
		SoftCap:      c.SoftCap,
		HardCap:      c.HardCap,
		Deadline:     deadline,
		Owner:        c.Owner,
		FeeRecipient: c.FeeRecipient,
	}
	address := program.DeriveAddress(c.Id, c.Owner)
	signers := []string{c.Owner}

	ixs := []program.Instruction{{Kind: program.IxCreateCampaign, Create: create, Signers: signers}}
	for _, tier := range c.Tiers {
		ixs = append(ixs, program.Instruction{
			Kind:     program.IxAddTier,
			Campaign: address,
			Signers:  signers,
			TierId:   tier.TierId,
			Amount:   tier.PledgeAmount,
		})
	}
	if c.Publish {
		ixs = append(ixs, program.Instruction{Kind: program.IxPublish, Campaign: address, Signers: signers})
	}
	return ixs, nil
}

func (c CampaignSeed) deadline(now time.Time) (time.Time, error) {
	if c.Deadline != "" {
		t, err := time.Parse(time.RFC3339, c.Deadline)
		if err != nil {
			return time.Time{}, fmt.Errorf("campaign %d: invalid deadline %q: %w", c.Id, c.Deadline, err)
		}
		return t.UTC(), nil
	}
	d, err := time.ParseDuration(c.Duration)
	if err != nil {
		return time.Time{}, fmt.Errorf("campaign %d: invalid duration %q: %w", c.Id, c.Duration, err)
	}
	return now.Add(d).UTC(), nil
}
