// Package cmdargs binds command line arguments to static properties through
// the reflection registry. Properties tagged with the CommandLineArg
// attribute become named flags or positional slots; parsing fills the
// underlying variables in place, falls back to environment variables for
// named flags left unset, and verifies required slots. Packages declare
// their arguments next to the variables that receive them and never touch
// argv directly.
package cmdargs
