// Copyright 2025 The NLP Odyssey Authors
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

package research_test

import (
	"testing"

	"github.com/nlpodyssey/research-assistant-go/research"
	"github.com/stretchr/testify/assert"
)

func TestShouldSave(t *testing.T) {
	for query, expected := range map[string]bool{
		"Research solar panel efficiency and save it": true,
		"STORE the results":                           true,
		"Write up the history of Rome":                true,
		"put it in a File":                            true,
		"what is the best file format for audio":      true,
		"my profile picture":                          true,
		"Research solar panel efficiency":             false,
		"":                                            false,
	} {
		assert.Equal(t, expected, research.ShouldSave(query), query)
	}
}
