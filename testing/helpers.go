// Package testing provides record fixtures and assertions for qrcard tests.
package testing

import (
	"strings"

	"github.com/zoobzio/qrcard"
)

// SampleRecord returns a clean profile record with a nested address and
// mixed value kinds.
func SampleRecord() *qrcard.Record {
	addr := qrcard.NewRecord().
		Set("street", qrcard.TextValue("123 Main St")).
		Set("city", qrcard.TextValue("Springfield")).
		Set("zip", qrcard.TextValue("12345"))

	return qrcard.NewRecord().
		Set("id", qrcard.NumberValue(1)).
		Set("name", qrcard.TextValue("Jane Doe")).
		Set("email", qrcard.TextValue("jane@example.com")).
		Set("age", qrcard.NumberValue(34)).
		Set("active", qrcard.BoolValue(true)).
		Set("score", qrcard.NumberValue(98.6)).
		Set("manager", qrcard.NullValue()).
		Set("address", qrcard.ObjectValue(addr)).
		Set("tags", qrcard.ArrayValue(
			qrcard.TextValue("admin"),
			qrcard.TextValue("true"),
			qrcard.TextValue("42"),
		))
}

// SensitiveRecord returns a record carrying sensitive fields at the top
// level, inside a nested object, and inside an array element.
func SensitiveRecord() *qrcard.Record {
	creds := qrcard.NewRecord().
		Set("apiKey", qrcard.TextValue("ak_live_123")).
		Set("scope", qrcard.TextValue("read"))

	inArray := qrcard.NewRecord().
		Set("label", qrcard.TextValue("backup")).
		Set("token", qrcard.TextValue("tok_in_array"))

	return qrcard.NewRecord().
		Set("id", qrcard.NumberValue(1)).
		Set("name", qrcard.TextValue("John Doe")).
		Set("password", qrcard.TextValue("supersecret123")).
		Set("token", qrcard.TextValue("eyJhbGciOiJIUzI1NiJ9")).
		Set("credentials", qrcard.ObjectValue(creds)).
		Set("devices", qrcard.ArrayValue(qrcard.ObjectValue(inArray)))
}

// DeepRecord returns a record nested depth objects deep under the key
// "child", with a "level" number at each depth.
func DeepRecord(depth int) *qrcard.Record {
	r := qrcard.NewRecord().Set("level", qrcard.NumberValue(float64(depth)))
	for i := depth - 1; i >= 1; i-- {
		r = qrcard.NewRecord().
			Set("level", qrcard.NumberValue(float64(i))).
			Set("child", qrcard.ObjectValue(r))
	}
	return r
}

// SensitivePaths returns the dotted paths of every sensitive key reachable
// through objects in r. Array elements are not searched.
func SensitivePaths(r *qrcard.Record) []string {
	var paths []string
	walk(r, nil, &paths)
	return paths
}

func walk(r *qrcard.Record, prefix []string, paths *[]string) {
	for k, v := range r.All() {
		path := append(append([]string(nil), prefix...), k)
		if qrcard.IsSensitive(k) {
			*paths = append(*paths, strings.Join(path, "."))
		}
		if obj, ok := v.Object(); ok {
			walk(obj, path, paths)
		}
	}
}
