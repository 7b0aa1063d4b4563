// Package auth provides account provisioning and password authentication
// primitives: a two-step registration guarded by an emailed activation code,
// password login, and stateless access/refresh session tokens.
//
// Registration:
//   - RegisterAccountHandler validates the payload, checks that neither the
//     phone number nor the email are taken, hashes the password and packs the
//     pending account into a signed, short lived activation token. The
//     plaintext activation code only leaves the process through the
//     NotificationSender.
//   - ActivateAccountHandler verifies the token, compares the code supplied by
//     the user and commits the account to the AccountDirectory.
//
// Sessions:
//   - TokenService mints access and refresh tokens with separate secrets and
//     audiences, so one kind never validates as the other.
//   - SessionContext is the per-request holder of the authenticated account and
//     its tokens. It travels inside context.Context; Logout clears it.
//
// Storage and delivery are collaborators: see the repository and mailer
// packages for the bun and SMTP backed implementations.
package auth
