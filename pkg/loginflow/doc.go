// Package loginflow implements the admin two-factor login state machine.
//
// # States
//
// Each browser session moves through:
//
//	ANONYMOUS --(credentials ok)--> AUTHENTICATED_UNVERIFIED
//	AUTHENTICATED_UNVERIFIED --(no confirmed device)--> ENROLLING
//	AUTHENTICATED_UNVERIFIED --(confirmed device exists)--> VERIFYING
//	ENROLLING --(code ok)--> VERIFIED   (also confirms the device)
//	ENROLLING --(code bad)--> ENROLLING
//	VERIFYING --(code ok)--> VERIFIED
//	VERIFYING --(code bad)--> VERIFYING
//	VERIFIED --(logout / session expiry)--> ANONYMOUS
//
// The session state itself lives in the token cookies (pkg/token): a temp
// token marks AUTHENTICATED_UNVERIFIED, an access token with the
// twofa_verified claim marks VERIFIED. This package only decides transitions
// and returns Result values; the HTTP layer (pkg/webapp) applies them.
//
// # Behavior notes
//
//   - A failed credential check never touches the device registry.
//   - Enrollment is idempotent before confirmation: repeated visits return
//     the same device and the same secret, including from concurrent tabs
//     (the repository's fetch-or-create is atomic).
//   - Enrollment is not re-enterable once a device is confirmed; the flow
//     redirects to standing verification instead.
//   - Verification without a confirmed device redirects back to enrollment
//     rather than failing.
//   - Every failed code check returns the same generic message, whether the
//     code was wrong, expired, or no device existed.
//   - Codes are not single-use: a valid code re-submitted inside its ~30s
//     window verifies again (see pkg/twofa). Request rate limiting on the
//     auth routes is the only damping applied, and it lives outside this
//     package (pkg/ratelimit).
package loginflow
