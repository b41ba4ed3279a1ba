package toon

import (
	"regexp"
	"strings"
)

// identifierSegmentRE matches a bare identifier segment eligible to
// participate in a folded dotted key: letters, digits, underscore, and
// hyphen, not starting with a digit or hyphen.
var identifierSegmentRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

func isIdentifierSegment(s string) bool {
	return identifierSegmentRE.MatchString(s)
}

// foldPlan is the result of planning whether an object field's key chain
// can be collapsed into a dotted key, per spec section 4.3.
type foldPlan struct {
	folded bool
	key    string // the dotted key to emit; equals the original key when !folded
	// Exactly one of (leaf valid) or (continuation != nil) holds when
	// folded is true: a fully folded chain ends in a leaf value emitted
	// inline (primitive, array, or empty object); a partially folded
	// chain ends in a non-empty object emitted as children at depth+1.
	leaf         Value
	hasLeaf      bool
	continuation *Object
}

// collisionChecker reports whether a candidate dotted key collides with a
// literal sibling key or an already-chosen folded key in the current
// emission scope.
type collisionChecker func(dotted string) bool

// planKeyFold decides how to fold the object field (key, value) per spec
// section 4.3: walk the maximal chain of single-key, identifier-segment
// objects starting at value, then try the longest dotted prefix (bounded by
// budget, where budget<=0 means unbounded) that does not collide, per
// collides. budget is evaluated fresh against the chain that starts at this
// field; a capped chain's remainder is handed to the next recursive encode
// call as an ordinary nested object, which gets its own fold budget when
// the encoder visits it.
func planKeyFold(key string, value Value, budget int, collides collisionChecker) foldPlan {
	segments := []string{key}
	cur := value

	for {
		obj, isObj := cur.Object()
		if !isObj || obj.Len() != 1 {
			break
		}

		f := obj.Fields()[0]
		if f.Quoted || !isIdentifierSegment(f.Key) {
			break
		}

		segments = append(segments, f.Key)
		cur = f.Value
	}

	if len(segments) < 2 {
		return foldPlan{key: key}
	}

	maxLen := len(segments)
	if budget > 0 && budget < maxLen {
		maxLen = budget
	}

	for length := maxLen; length >= 2; length-- {
		dotted := strings.Join(segments[:length], ".")
		if collides(dotted) {
			continue
		}

		if length == len(segments) {
			if isFoldableLeaf(cur) {
				return foldPlan{folded: true, key: dotted, leaf: cur, hasLeaf: true}
			}

			obj, _ := cur.Object()

			return foldPlan{folded: true, key: dotted, continuation: obj}
		}

		return foldPlan{folded: true, key: dotted, continuation: buildNestedObject(segments[length:], cur)}
	}

	return foldPlan{key: key}
}

// isFoldableLeaf reports whether v may terminate a fully folded chain: a
// primitive, an array, or an empty object.
func isFoldableLeaf(v Value) bool {
	if v.IsPrimitive() || v.Kind() == KindArray {
		return true
	}

	if obj, ok := v.Object(); ok {
		return obj.IsEmpty()
	}

	return false
}

// buildNestedObject reconstructs the nested single-key object chain for
// segments, with leaf as the innermost value, used when a fold budget caps
// the chain shorter than its natural length.
func buildNestedObject(segments []string, leaf Value) *Object {
	v := leaf
	for i := len(segments) - 1; i >= 0; i-- {
		obj := NewObject()
		obj.Set(segments[i], v)
		v = Obj(obj)
	}

	obj, _ := v.Object()

	return obj
}
