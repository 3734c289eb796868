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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Program  ProgramConfig
	Mirror   MirrorConfig
	Formance FormanceConfig
	API      APIConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ProgramConfig holds the fixed parameters of the campaign program
type ProgramConfig struct {
	FeePercent    decimal.Decimal
	CampaignsFile string
}

// MirrorConfig holds transfer mirror settings
type MirrorConfig struct {
	PollingInterval time.Duration
	BatchSize       int
}

// FormanceConfig holds the Formance Stack connection used by the mirror
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
	Asset        string
}

// Enabled reports whether enough settings are present to reach a stack
func (c FormanceConfig) Enabled() bool {
	return c.StackURL != "" && c.ClientID != "" && c.ClientSecret != ""
}

// APIConfig holds HTTP gateway settings
type APIConfig struct {
	ListenAddr     string
	RequestTimeout time.Duration
}
