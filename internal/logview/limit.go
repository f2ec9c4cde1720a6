package logview

// Unbounded means no limit on the number of entries.
const Unbounded = -1

// DeprecatedLimitWarning is shown when only the deprecated -l flag is given.
const DeprecatedLimitWarning = "The -l shorthand is deprecated, use -n instead."

// ResolveLimit picks the entry limit from the --limit value and the deprecated
// -l value, in that order of priority. warn reports whether the deprecated
// value is the one in effect.
func ResolveLimit(limit, deprecated *int) (n int, warn bool) {
	switch {
	case limit != nil:
		return *limit, false
	case deprecated != nil:
		return *deprecated, true
	default:
		return Unbounded, false
	}
}
