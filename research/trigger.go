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

package research

import "strings"

// SaveKeywords trigger saving the report when found anywhere in a query.
var SaveKeywords = []string{"save", "store", "write", "file"}

// ShouldSave reports whether query contains any of SaveKeywords,
// ignoring case. It is a plain substring match, so "profile" counts too.
func ShouldSave(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range SaveKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
