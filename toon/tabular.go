package toon

// detectTabular reports whether items qualifies for tabular array form per
// spec section 4.4: non-empty, every element an object, every element
// sharing the same key set as the first element (order may differ), and
// every value at those keys a primitive. On success it returns the field
// order to use, taken from the first element's key insertion order. Any
// failure falls back to list form.
func detectTabular(items []Value) ([]string, bool) {
	if len(items) == 0 {
		return nil, false
	}

	firstObj, ok := items[0].Object()
	if !ok {
		return nil, false
	}

	fields := firstObj.Keys()
	if !allFieldsPrimitive(firstObj, fields) {
		return nil, false
	}

	for _, item := range items[1:] {
		obj, ok := item.Object()
		if !ok {
			return nil, false
		}

		if obj.Len() != len(fields) {
			return nil, false
		}

		for _, name := range fields {
			v, present := obj.Get(name)
			if !present || !v.IsPrimitive() {
				return nil, false
			}
		}
	}

	return fields, true
}

func allFieldsPrimitive(obj *Object, fields []string) bool {
	for _, name := range fields {
		v, _ := obj.Get(name)
		if !v.IsPrimitive() {
			return false
		}
	}

	return true
}
