package remote

import "regexp"

// Remote object keys follow "{prefix}_{recordId}.json". The parse rule must
// stay the exact inverse of MakeKey: prefixes must not contain '_' and record
// ids must not contain '.', otherwise parsing silently fails and the object
// is skipped.
var keyRe = regexp.MustCompile(`^[^_]+_([^.]+)\.json$`)

// MakeKey builds the remote object key for a record id under a prefix.
func MakeKey(prefix, recordID string) string {
	return prefix + "_" + recordID + ".json"
}

// ParseKey recovers the record id from a remote object key. ok is false when
// the key does not match the expected format.
func ParseKey(key string) (recordID string, ok bool) {
	m := keyRe.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	return m[1], true
}
