// Package mirror substitutes local copies for remote sources.
//
// A Mirrors value is the explicit list of active mirrors for a session. It is
// carried to the loading code through a context.Context (WithMirrors,
// FromContext) instead of living in a package variable. Activation and
// deactivation are expected from a single setup goroutine; lookups may run
// concurrently.
//
// DirectoryMirror stores copies under a root directory:
//
//	<root>/url/<scheme>/<host>/<path>         without an origin prefix
//	<root>/url/<url with the prefix removed>  with an origin prefix
//
// The CLIMETLAB_MIRROR variable holds either a root directory, or the
// deprecated pair "origin-prefix root".
package mirror
