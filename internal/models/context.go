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
	"context"
)

type instructionContextKey struct{}

// InstructionContext carries the identity of the instruction being executed so
// the bank can tag every transfer it records without widening its interface.
type InstructionContext struct {
	InstructionId string
	Kind          string
	Campaign      string
}

// WithInstructionContext attaches instruction data to a context.
func WithInstructionContext(ctx context.Context, ic *InstructionContext) context.Context {
	return context.WithValue(ctx, instructionContextKey{}, ic)
}

// GetInstructionContext retrieves instruction data from context, or nil if absent.
func GetInstructionContext(ctx context.Context) *InstructionContext {
	ic, _ := ctx.Value(instructionContextKey{}).(*InstructionContext)
	return ic
}
