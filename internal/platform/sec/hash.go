// Copyright (c) 2026 Aegis. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
//
// Memory-hard hashing is mandatory for stored credentials. The parameters
// below follow the RFC 9106 low-memory profile: 64 MiB, 1 pass, 4 lanes.
const (
	argonMemoryKB    uint32 = 64 * 1024
	argonTime        uint32 = 1
	argonParallelism uint8  = 4
	argonSaltLength         = 16
	argonKeyLength   uint32 = 32
)

// HashPassword hashes a plain-text password using argon2id with a fresh
// random salt, returning the PHC string encoding
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash).
func HashPassword(plainTextPassword string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(plainTextPassword), salt, argonTime, argonMemoryKB, argonParallelism, argonKeyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemoryKB,
		argonTime,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// CheckPasswordHash compares a plain-text password with its PHC-encoded hash
// using a constant-time comparison. Malformed hashes simply fail the check.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	memory, time, parallelism, salt, hash, err := parsePHC(existingHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(plainTextPassword), salt, time, memory, parallelism, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1
}

// parsePHC decodes the stored parameters, salt, and digest from a PHC string.
// Verification reuses the STORED parameters rather than the current defaults,
// so old hashes keep verifying after a parameter upgrade.
func parsePHC(encoded string) (memory, time uint32, parallelism uint8, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: malformed argon2id hash")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: unsupported argon2 version")
	}

	var p uint32
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &p); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: malformed argon2 parameters")
	}
	parallelism = uint8(p)

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: malformed salt encoding")
	}

	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: malformed hash encoding")
	}

	return memory, time, parallelism, salt, hash, nil
}
