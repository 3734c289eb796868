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
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

const addressDomain = "crowdfund:campaign"

// DeriveAddress maps a campaign id and its seed key (the owner identity) to the
// account address holding that campaign. Equal inputs always yield the same
// address; distinct pairs are separated by SHA-256.
func DeriveAddress(campaignId uint64, seedKey string) string {
	var id [8]byte
	binary.LittleEndian.PutUint64(id[:], campaignId)

	h := sha256.New()
	h.Write([]byte(addressDomain))
	h.Write(id[:])
	h.Write([]byte(seedKey))
	return hex.EncodeToString(h.Sum(nil))
}
