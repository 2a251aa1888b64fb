// Copyright (c) 2026 Aegis. All rights reserved.

package auth

import "time"

// # Rotation

const (
	// RotationGracePeriod is how long a consumed refresh token lingers as a
	// tombstone. A second rotation attempt inside this window is reported as
	// reuse; after it, the token is indistinguishable from one that never
	// existed.
	RotationGracePeriod = 10 * time.Second
)

// # Throttled Actions

// Subjects differ per action: login and register count against the submitted
// identifier (pre-auth), refresh counts against the token's resolved subject.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
	ActionRefresh  = "refresh"
)

// # Field Limits

const (
	UsernameMinLen = 3
	UsernameMaxLen = 32
	PasswordMinLen = 8
	PasswordMaxLen = 72
)
