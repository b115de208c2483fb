package transform

import (
	"crypto/sha256"

	"github.com/iancoleman/strcase"
)

// Discriminator derives the 8-byte dispatch tag for an instruction name in
// the compatibility scheme: the leading bytes of sha256("global:" + name)
// with the name in snake_case. Purely content-derived, so equal names always
// produce equal tags.
func Discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + strcase.ToSnake(name)))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// placeholderDiscriminator is the tag used when compatibility is disabled.
// All-zero tags are exempt from the uniqueness requirement.
var placeholderDiscriminator [8]byte
