// Package tracked records which slots of a slot-indexed value store were
// inserted, modified or removed since the last reset.
//
// Structural changes are recorded as they happen. In-place modifications are
// found by Maintain, which compares live values with the snapshot taken at
// the previous Reset. Consumers read the dirty set or the event sequence
// between Maintain and Reset, then call Reset to open the next epoch:
//
//	store := tracked.NewMaskedComparable[int](slots.NewVecStore[int]())
//	store.Insert(1, 10)
//	store.Modify(1, func(v *int) { *v = 11 })
//	store.Maintain()
//	for id, change := range store.Events() {
//		fmt.Println(id, change)
//	}
//	store.Reset()
package tracked
