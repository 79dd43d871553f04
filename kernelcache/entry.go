/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package kernelcache

import (
	"maps"
	"slices"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Entry is the cached output of a compilation.
type Entry struct {
	// Code object, as returned by the compiler.
	Code []byte

	// Log of the compilation, usually empty for successful compilations.
	Log string

	// LoweredNames maps name expressions to their lowered names.
	LoweredNames map[string]string

	// Options and Arch used in the compilation, for information.
	Options []string
	Arch    string

	CreatedAt time.Time
}

// entryFormatVersion is written in every entry: entries with a different version are rejected.
const entryFormatVersion = 1

// Field numbers of the Entry encoding.
const (
	entryVersionField protowire.Number = iota + 1
	entryCodeField
	entryLogField
	entryLoweredNameField
	entryOptionField
	entryArchField
	entryCreatedAtField
)

// Marshal encodes the entry in the protocol buffers wire format.
// The encoding is deterministic: lowered names are sorted by name expression.
func (e *Entry) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, entryVersionField, protowire.VarintType)
	b = protowire.AppendVarint(b, entryFormatVersion)
	b = protowire.AppendTag(b, entryCodeField, protowire.BytesType)
	b = protowire.AppendBytes(b, e.Code)
	if e.Log != "" {
		b = appendString(b, entryLogField, e.Log)
	}
	for _, expr := range slices.Sorted(maps.Keys(e.LoweredNames)) {
		var pair []byte
		pair = appendString(pair, 1, expr)
		pair = appendString(pair, 2, e.LoweredNames[expr])
		b = protowire.AppendTag(b, entryLoweredNameField, protowire.BytesType)
		b = protowire.AppendBytes(b, pair)
	}
	for _, option := range e.Options {
		b = appendString(b, entryOptionField, option)
	}
	if e.Arch != "" {
		b = appendString(b, entryArchField, e.Arch)
	}
	if !e.CreatedAt.IsZero() {
		b = protowire.AppendTag(b, entryCreatedAtField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.CreatedAt.UnixNano()))
	}
	return b
}

// UnmarshalEntry decodes an entry encoded with Entry.Marshal. Unknown fields are skipped.
func UnmarshalEntry(data []byte) (*Entry, error) {
	e := &Entry{}
	var version uint64
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		switch {
		case num == entryVersionField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(value)
			version = v
			return n, nil
		case num == entryCodeField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(value)
			e.Code = slices.Clone(v)
			return n, nil
		case num == entryLogField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(value)
			e.Log = v
			return n, nil
		case num == entryLoweredNameField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(value)
			if n < 0 {
				return n, nil
			}
			expr, lowered, err := decodePair(v)
			if err != nil {
				return 0, err
			}
			if e.LoweredNames == nil {
				e.LoweredNames = make(map[string]string)
			}
			e.LoweredNames[expr] = lowered
			return n, nil
		case num == entryOptionField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(value)
			e.Options = append(e.Options, v)
			return n, nil
		case num == entryArchField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(value)
			e.Arch = v
			return n, nil
		case num == entryCreatedAtField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(value)
			e.CreatedAt = time.Unix(0, int64(v))
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, value), nil
	})
	if err != nil {
		return nil, errors.WithMessage(err, "decoding kernel cache entry")
	}
	if version != entryFormatVersion {
		return nil, errors.Errorf("kernel cache entry has format version %d, expected %d", version, entryFormatVersion)
	}
	return e, nil
}

// decodePair decodes a (name expression, lowered name) pair.
func decodePair(data []byte) (expr, lowered string, err error) {
	err = consumeFields(data, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		if typ == protowire.BytesType && (num == 1 || num == 2) {
			v, n := protowire.ConsumeString(value)
			if num == 1 {
				expr = v
			} else {
				lowered = v
			}
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, value), nil
	})
	return
}

// consumeFields iterates over the fields of a message: fieldFn consumes the value of each field, and returns
// the number of bytes consumed, or a negative protowire error code.
func consumeFields(data []byte, fieldFn func(num protowire.Number, typ protowire.Type, value []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		n, err := fieldFn(num, typ, data)
		if err != nil {
			return err
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
	}
	return nil
}
