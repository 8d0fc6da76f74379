package models

// IDList is a denormalized set of entity references stored as a JSON array
// column on the owning row. Membership is always tested by exact ID equality.
type IDList []uint

// Contains reports whether id is a member of the list.
func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Push returns the list with id appended. Adding an existing member is a no-op
// so the list never holds duplicates.
func (l IDList) Push(id uint) IDList {
	if l.Contains(id) {
		return l
	}
	return append(l, id)
}

// Pull returns a new list with id removed, leaving the receiver untouched.
// Removing a non-member is a no-op.
func (l IDList) Pull(id uint) IDList {
	out := make(IDList, 0, len(l))
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
