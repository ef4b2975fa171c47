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

package agents

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

func newEmptyJSONSchema() map[string]any {
	return map[string]any{
		"additionalProperties": false,
		"type":                 "object",
		"properties":           map[string]any{},
		"required":             []string{},
	}
}

// EnsureStrictJSONSchema mutates the given JSON schema to ensure it conforms
// to the `strict` standard that the OpenAI API expects: every object forbids
// additional properties and lists all of its properties as required.
//
// References are not resolved; reflect schemas with DoNotReference.
func EnsureStrictJSONSchema(schema map[string]any) (map[string]any, error) {
	if len(schema) == 0 {
		return newEmptyJSONSchema(), nil
	}
	return ensureStrictJSONSchema(schema, nil)
}

func ensureStrictJSONSchema(rawJSONSchema any, path []string) (map[string]any, error) {
	jsonSchema, ok := rawJSONSchema.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected %#v to be a map[string]any, path=%+v", rawJSONSchema, path)
	}

	if _, ok := jsonSchema["$ref"]; ok {
		return nil, UserErrorf("$ref is not supported in strict schemas, path=%+v", path)
	}

	if typ, _ := jsonSchema["type"].(string); typ == "object" {
		additionalProperties, has := jsonSchema["additionalProperties"]
		if !has {
			jsonSchema["additionalProperties"] = false
		} else if additionalProperties != false {
			return nil, NewUserError(
				"additionalProperties should not be set for object types. " +
					"If you really need this, disable the strict schema.",
			)
		}
	}

	if properties, ok := jsonSchema["properties"].(map[string]any); ok {
		jsonSchema["required"] = slices.Sorted(maps.Keys(properties))

		newProperties := make(map[string]any, len(properties))
		for key, propSchema := range properties {
			var err error
			newProperties[key], err = ensureStrictJSONSchema(propSchema, slices.Concat(path, []string{"properties", key}))
			if err != nil {
				return nil, err
			}
		}
		jsonSchema["properties"] = newProperties
	}

	if items, ok := jsonSchema["items"].(map[string]any); ok {
		var err error
		jsonSchema["items"], err = ensureStrictJSONSchema(items, slices.Concat(path, []string{"items"}))
		if err != nil {
			return nil, err
		}
	}

	if anyOf, ok := jsonSchema["anyOf"].([]any); ok {
		newAnyOf := make([]any, len(anyOf))
		for i, variant := range anyOf {
			var err error
			newAnyOf[i], err = ensureStrictJSONSchema(variant, slices.Concat(path, []string{"anyOf", strconv.Itoa(i)}))
			if err != nil {
				return nil, err
			}
		}
		jsonSchema["anyOf"] = newAnyOf
	}

	// nil defaults carry no information
	if d, ok := jsonSchema["default"]; ok && d == nil {
		delete(jsonSchema, "default")
	}

	return jsonSchema, nil
}
