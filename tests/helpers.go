package tests

import (
	"math/rand"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

func randomBytes(n int) []byte {
	a := make([]byte, n)
	rand.Read(a) //nolint:staticcheck // SA1019: rand.Read has been deprecated since Go 1.20
	return a
}

// randomAddress returns address of an account nobody can sign for.
func randomAddress() util.Uint160 {
	var u util.Uint160
	copy(u[:], randomBytes(util.Uint160Size))
	return u
}
