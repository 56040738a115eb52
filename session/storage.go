package session

import "context"

// StorageKey is the slot holding the serialized session.
const StorageKey = "currentUser"

// Storage is durable client-side key-value storage. Get reports found=false
// for a missing key; Delete of a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
