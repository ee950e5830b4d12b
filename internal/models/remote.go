package models

// RemoteObject is the blob store's view of one serialized Record.
//
// Key is derived deterministically from the account prefix and the record id
// (see remote.MakeKey). UploadedAt is the server-assigned timestamp in epoch
// milliseconds.
type RemoteObject struct {
	Key        string
	URL        string
	Size       int64
	UploadedAt int64
}
