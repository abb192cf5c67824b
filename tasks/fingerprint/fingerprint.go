// Package fingerprint derives a stable identity for a task invocation from
// its resolved parameter values.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"reflect"
	"sort"
	"strconv"

	"github.com/haydenflinner/magicinvoke/errors"
	"github.com/haydenflinner/magicinvoke/tasks/params"
)

// Fingerprint identifies one invocation's resolved parameters.
//
// Two invocations with structurally equal resolved parameters produce the
// same fingerprint, regardless of how each value was supplied or in which
// order the parameters were declared. The encoding is stable across process
// runs so caches survive restarts.
type Fingerprint string

// String returns the hex representation of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Kind tags keep the encoding unambiguous: "1" and 1 and [1] must all hash
// differently.
const (
	tagNil    = 'n'
	tagBool   = 'b'
	tagInt    = 'i'
	tagUint   = 'u'
	tagFloat  = 'f'
	tagString = 's'
	tagList   = 'l'
	tagMap    = 'm'
)

// Build computes the fingerprint for a resolved parameter set.
//
// Parameter names are sorted before serialization, so declaration order never
// affects the result. Every value must be nil, a bool, an integer, a float, a
// string, a slice or array of supported values, or a string-keyed map of
// supported values; anything else fails with an UnhashableParameterError.
// Pure: no side effects, no filesystem access.
func Build(resolved params.Values) (Fingerprint, error) {
	names := make([]string, 0, len(resolved))
	for name := range resolved {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		writeField(h, []byte(name))
		if err := encodeValue(h, name, resolved[name]); err != nil {
			return "", err
		}
	}

	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// writeField writes length-prefixed data so adjacent fields can never blur
// into each other.
func writeField(h hash.Hash, data []byte) {
	length := uint64(len(data))
	h.Write([]byte{
		byte(length >> 56),
		byte(length >> 48),
		byte(length >> 40),
		byte(length >> 32),
		byte(length >> 24),
		byte(length >> 16),
		byte(length >> 8),
		byte(length),
	})
	h.Write(data)
}

func encodeValue(h hash.Hash, param string, value any) error {
	if value == nil {
		h.Write([]byte{tagNil})
		return nil
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Bool:
		h.Write([]byte{tagBool})
		writeField(h, []byte(strconv.FormatBool(v.Bool())))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		h.Write([]byte{tagInt})
		writeField(h, []byte(strconv.FormatInt(v.Int(), 10)))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		h.Write([]byte{tagUint})
		writeField(h, []byte(strconv.FormatUint(v.Uint(), 10)))
	case reflect.Float32, reflect.Float64:
		h.Write([]byte{tagFloat})
		writeField(h, []byte(strconv.FormatFloat(v.Float(), 'g', -1, 64)))
	case reflect.String:
		h.Write([]byte{tagString})
		writeField(h, []byte(v.String()))
	case reflect.Slice, reflect.Array:
		h.Write([]byte{tagList})
		writeField(h, []byte(strconv.Itoa(v.Len())))
		for i := 0; i < v.Len(); i++ {
			if err := encodeValue(h, param, v.Index(i).Interface()); err != nil {
				return err
			}
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return errors.NewUnhashableParameterError(param, value)
		}
		h.Write([]byte{tagMap})
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		writeField(h, []byte(strconv.Itoa(len(keys))))
		for _, k := range keys {
			writeField(h, []byte(k))
			if err := encodeValue(h, param, v.MapIndex(reflect.ValueOf(k)).Interface()); err != nil {
				return err
			}
		}
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			h.Write([]byte{tagNil})
			return nil
		}
		return errors.NewUnhashableParameterError(param, value)
	default:
		return errors.NewUnhashableParameterError(param, value)
	}

	return nil
}
