// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package assignment

import "errors"

var (
	// ErrGeneratorRequired is returned when a Parser is constructed without
	// an oracle client.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrNoItems is returned when the oracle produced no parseable items.
	ErrNoItems = errors.New("no assignment items extracted")
)
