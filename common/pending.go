package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/interop/util"
)

// Pending is a proposed change waiting for consent of both Payer and Payee.
// Absent record is the same as the neutral one: no consents, empty target.
type Pending struct {
	PayerConsented bool
	PayeeConsented bool
	// Target of the change: proposed address or name of the next stage.
	Target []byte
}

const pendingPrefix = "p"

// Propose registers consent of role for changing kind to target. A proposal
// with a target different from the pending one starts a new round. Usufruct
// can start a round, but its consent is not counted.
//
// Propose returns true when both Payer and Payee have consented to the same
// target. The record is removed then and the caller must apply the change.
func Propose(ctx storage.Context, kind string, role Role, target []byte) bool {
	p := Inspect(ctx, kind)
	if !BytesEqual(p.Target, target) {
		p = Pending{Target: target}
	}

	switch role {
	case RolePayer:
		p.PayerConsented = true
	case RolePayee:
		p.PayeeConsented = true
	}

	key := pendingKey(kind)
	if p.PayerConsented && p.PayeeConsented {
		storage.Delete(ctx, key)
		runtime.Notify("UpdateAuthorized", kind, target)
		return true
	}

	SetSerialized(ctx, key, p)
	runtime.Notify("UpdateRequested", kind, target, p.PayerConsented, p.PayeeConsented)

	return false
}

// Reject removes the pending change of kind if its target is target.
// Rejection of anything else is a no-op.
func Reject(ctx storage.Context, kind string, target []byte) {
	key := pendingKey(kind)
	data := GetSerialized(ctx, key)
	if data == nil {
		return
	}

	p := data.(Pending)
	if !BytesEqual(p.Target, target) {
		return
	}

	storage.Delete(ctx, key)
	runtime.Notify("UpdateRejected", kind, target)
}

// Inspect returns the pending change of kind.
func Inspect(ctx storage.Context, kind string) Pending {
	data := GetSerialized(ctx, pendingKey(kind))
	if data == nil {
		return Pending{Target: []byte{}}
	}
	return data.(Pending)
}

func pendingKey(kind string) string {
	return pendingPrefix + kind
}

// BytesEqual compares two slice of bytes by wrapping them into strings,
// which is necessary with new util.Equal interop behaviour, see neo-go#1176.
func BytesEqual(a []byte, b []byte) bool {
	return util.Equals(string(a), string(b))
}
