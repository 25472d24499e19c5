// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a store failure. No-profile, empty-candidate and
// missing-source-book conditions are served by the fallback provider instead
// of failing; only a broken store surfaces as this error. Callers check it
// with errors.Is to decide between "show stale results" and "try again" UX,
// which must stay distinguishable from a legitimately empty recommendation
// list.
var ErrUnavailable = errors.New("recommendation source unavailable")

// unavailable wraps a store error with its failed operation, tagging it with
// ErrUnavailable for the caller-side errors.Is check.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
