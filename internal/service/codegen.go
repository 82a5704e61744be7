package service

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Room codes avoid characters that read alike (0/O, 1/I/l)
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
)

// CodeGenerator produces candidate room codes. It is injected into the
// RoomService so tests can drive it deterministically; uniqueness is
// enforced by the store, not the generator.
type CodeGenerator interface {
	Generate() (string, error)
}

type nanoidGenerator struct{}

// NewCodeGenerator returns the default nanoid-backed generator
func NewCodeGenerator() CodeGenerator {
	return nanoidGenerator{}
}

func (nanoidGenerator) Generate() (string, error) {
	return gonanoid.Generate(roomCodeAlphabet, roomCodeLength)
}
