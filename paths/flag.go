package paths

import (
	"flag"
)

// SetupFilePathFlag creates a new string flag with the passed name for the
// path to a file of the given kind. The flag defaults to def.
func SetupFilePathFlag(kind, flagName, def string, flagPtr *string) {
	flag.StringVar(flagPtr, flagName, def, "Path to the "+kind)
}
