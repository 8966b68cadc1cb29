/*
Package contracts provides access to compiled escrow contracts.

Contracts are built with `make build`, which puts contract.nef and
manifest.json files into the directory of each contract.
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

// Variant is a kind of escrow contract. It is also a name of the directory
// containing the contract.
type Variant string

const (
	// Approval is an escrow releasing a fixed payment after both parties approve it.
	Approval Variant = "approval"
	// Interval is an escrow streaming payment over time.
	Interval Variant = "interval"

	nefName      = "contract.nef"
	manifestName = "manifest.json"
)

// Contract groups information about compiled Neo contract.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	errInvalidNEF      = errors.New("invalid NEF")
	errInvalidManifest = errors.New("invalid manifest")

	// ErrUnknownVariant is returned for unsupported escrow variants.
	ErrUnknownVariant = errors.New("unknown escrow variant")
)

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}

// ParseVariant returns Variant by its name.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case Approval, Interval:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Get reads compiled contract of the given variant from fsys.
func Get(fsys fs.FS, v Variant) (Contract, error) {
	if _, err := ParseVariant(string(v)); err != nil {
		return Contract{}, err
	}

	c, err := readContractFromDir(fsys, string(v))
	if err != nil {
		return c, fmt.Errorf("read contract %s: %w", v, err)
	}

	return c, nil
}

// GetFromDir is the same as Get but reads contract from the directory on
// the local file system, like the contracts directory of this repository.
func GetFromDir(dir string, v Variant) (Contract, error) {
	return Get(os.DirFS(dir), v)
}

func readContractFromDir(_fs fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS paths are always slash-separated, so filepath.Join() is not
	// applicable.
	fNEF, err := _fs.Open(dir + "/" + nefName)
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := _fs.Open(dir + "/" + manifestName)
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	return c, nil
}
