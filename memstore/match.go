package memstore

import (
	"reflect"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toDoc renders v the way MongoDB would store it.
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// Match evaluates the subset of the MongoDB query language the stores
// emit: equality, $gte/$gt/$lte/$lt, $ne, $exists, $in, $or, $and and
// case-insensitive regexes.
func Match(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$or":
			if !anyMatch(doc, cond) {
				return false
			}
		case "$and":
			for _, sub := range subFilters(cond) {
				if !Match(doc, sub) {
					return false
				}
			}
		default:
			val, present := doc[key]
			if !matchField(val, present, cond) {
				return false
			}
		}
	}
	return true
}

func anyMatch(doc bson.M, cond any) bool {
	for _, sub := range subFilters(cond) {
		if Match(doc, sub) {
			return true
		}
	}
	return false
}

func subFilters(cond any) []bson.M {
	var out []bson.M
	switch c := cond.(type) {
	case bson.A:
		for _, v := range c {
			if m, ok := v.(bson.M); ok {
				out = append(out, m)
			}
		}
	case []bson.M:
		out = c
	case []interface{}:
		for _, v := range c {
			if m, ok := v.(bson.M); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func matchField(val any, present bool, cond any) bool {
	if re, ok := cond.(primitive.Regex); ok {
		return matchRegex(val, re)
	}
	ops, ok := cond.(bson.M)
	if !ok || !isOperatorDoc(ops) {
		return equal(val, cond)
	}
	for op, arg := range ops {
		switch op {
		case "$eq":
			if !equal(val, arg) {
				return false
			}
		case "$ne":
			if equal(val, arg) {
				return false
			}
		case "$exists":
			if want, _ := arg.(bool); present != want {
				return false
			}
		case "$gte", "$gt", "$lte", "$lt":
			c, ok := compare(val, arg)
			if !ok {
				return false
			}
			switch op {
			case "$gte":
				if c < 0 {
					return false
				}
			case "$gt":
				if c <= 0 {
					return false
				}
			case "$lte":
				if c > 0 {
					return false
				}
			case "$lt":
				if c >= 0 {
					return false
				}
			}
		case "$in":
			if !in(val, arg) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isOperatorDoc(m bson.M) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return len(m) > 0
}

func matchRegex(val any, re primitive.Regex) bool {
	s, ok := val.(string)
	if !ok {
		return false
	}
	pattern := re.Pattern
	if strings.Contains(re.Options, "i") {
		pattern = "(?i)" + pattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return compiled.MatchString(s)
}

func in(val any, arg any) bool {
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if equal(val, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func compare(a, b any) (int, bool) {
	fa, ok := number(a)
	if !ok {
		return 0, false
	}
	fb, ok := number(b)
	if !ok {
		return 0, false
	}
	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	default:
		return 0, true
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// normalizeAs round-trips d through T so stored values carry the types the
// driver would have written.
func normalizeAs[T any](d bson.M) (bson.M, error) {
	var v T
	if err := fromDoc(d, &v); err != nil {
		return nil, err
	}
	return toDoc(&v)
}
