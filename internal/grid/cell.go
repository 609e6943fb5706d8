package grid

import "strings"

// Flag is a bitmask describing the state of a single cell.
//
// Locked, Occupied and OccupyPreview are mutually exclusive: at most one of
// them may be set on a cell at any time, with priority
// Locked > Occupied > OccupyPreview > Buildable > Empty.
// ModuleBlocked is orthogonal and may coexist with any of them.
type Flag uint8

const (
	FlagEmpty         Flag = 0
	FlagLocked        Flag = 1
	FlagBuildable     Flag = 2
	FlagOccupied      Flag = 4
	FlagOccupyPreview Flag = 8
	FlagModuleBlocked Flag = 16
)

// flagExclusive covers the states that may not coexist on one cell.
const flagExclusive = FlagLocked | FlagOccupied | FlagOccupyPreview

// Has returns true if all bits of other are set in f.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// HasAny returns true if any bit of other is set in f.
func (f Flag) HasAny(other Flag) bool {
	return f&other != 0
}

// String returns a readable representation like "Occupied|ModuleBlocked".
func (f Flag) String() string {
	if f == FlagEmpty {
		return "Empty"
	}
	names := make([]string, 0, 4)
	if f.Has(FlagLocked) {
		names = append(names, "Locked")
	}
	if f.Has(FlagBuildable) {
		names = append(names, "Buildable")
	}
	if f.Has(FlagOccupied) {
		names = append(names, "Occupied")
	}
	if f.Has(FlagOccupyPreview) {
		names = append(names, "OccupyPreview")
	}
	if f.Has(FlagModuleBlocked) {
		names = append(names, "ModuleBlocked")
	}
	return strings.Join(names, "|")
}

// mergeFlags applies a set/clear request against the current flags under the
// priority rules. Returns the resulting flags and whether the request was
// accepted. On rejection the current flags are returned unchanged.
//
// Rules, in order:
//  1. A Locked cell rejects any request that neither clears nor re-asserts
//     Locked.
//  2. An Occupied cell rejects adding OccupyPreview unless Occupied is
//     cleared in the same request.
//  3. Buildable may not be added while an exclusive state remains present.
//  4. After merging, only the highest-priority exclusive flag survives
//     (Locked > Occupied > OccupyPreview), so exclusivity self-heals even
//     after unchecked writes.
//  5. Any surviving exclusive flag forces Buildable off.
func mergeFlags(cur, set, clear Flag) (Flag, bool) {
	if cur.Has(FlagLocked) && !clear.Has(FlagLocked) && !set.Has(FlagLocked) {
		return cur, false
	}
	if cur.Has(FlagOccupied) && set.Has(FlagOccupyPreview) && !clear.Has(FlagOccupied) {
		return cur, false
	}
	if set.Has(FlagBuildable) && (cur&^clear).HasAny(flagExclusive) {
		return cur, false
	}
	return collapse(cur&^clear | set), true
}

// collapse enforces exclusivity on an arbitrary flag combination, keeping
// only the highest-priority exclusive flag and dropping Buildable whenever
// an exclusive flag remains.
func collapse(f Flag) Flag {
	switch {
	case f.Has(FlagLocked):
		f &^= FlagOccupied | FlagOccupyPreview
	case f.Has(FlagOccupied):
		f &^= FlagOccupyPreview
	}
	if f.HasAny(flagExclusive) {
		f &^= FlagBuildable
	}
	return f
}
