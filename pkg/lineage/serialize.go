// Copyright 2025 Kadir Pekel
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

package lineage

import (
	"fmt"
	"reflect"
	"time"
)

// LLMResponseRecord is the shape extracted from a provider response when
// serializing it for lineage: content, finish reason, model, and token
// usage when available. This mirrors §4.B's "LLM response records" case
// and the normalized LLMResponse shape described in
type LLMResponseRecord struct {
	Content      string         `json:"content"`
	FinishReason string         `json:"finish_reason,omitempty"`
	Model        string         `json:"model,omitempty"`
	Usage        map[string]int `json:"usage,omitempty"`
}

// llmResponseLike is satisfied by any value that can describe itself as
// an LLMResponseRecord — the llm package's response type implements this
// so the serializer need not import it (avoiding a dependency cycle).
type llmResponseLike interface {
	LineageRecord() LLMResponseRecord
}

// SerializeValue implements the small sum type:
// {Primitive, Path, Timestamp, Seq, Map, LLMResponse, Opaque}, each with
// an explicit encoder. The default branch writes a stringified tag
// "<repr> (type: <kind>)" rather than failing, since lineage write
// failures must never propagate (§4.B "Failure policy").
func SerializeValue(v any) any {
	if v == nil {
		return nil
	}

	switch tv := v.(type) {
	case string, bool, int, int64, float64, float32, uint, uint64:
		return tv // Primitive
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano) // Timestamp
	case llmResponseLike:
		return tv.LineageRecord() // LLMResponse
	case fmt.Stringer:
		return tv.String() // treated as Path-like: anything with a String() method
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = SerializeValue(iter.Value().Interface())
		}
		return out // Map
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = SerializeValue(rv.Index(i).Interface())
		}
		return out // Seq
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return SerializeValue(rv.Elem().Interface())
	case reflect.Struct:
		return structToMap(v) // Map (struct fields)
	}

	// Opaque fallback.
	return fmt.Sprintf("%v (type: %T)", v, v)
}

func structToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		out[field.Name] = SerializeValue(rv.Field(i).Interface())
	}
	return out
}
