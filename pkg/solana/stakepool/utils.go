package stakepool

import (
	"bytes"
)

const discriminatorSize = 8

func putDiscriminator(dst []byte, src []byte, offset *int) {
	copy(dst[*offset:], src)
	*offset += discriminatorSize
}

func hasDiscriminator(data []byte, discriminator []byte) bool {
	return len(data) >= discriminatorSize && bytes.Equal(data[:discriminatorSize], discriminator)
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
