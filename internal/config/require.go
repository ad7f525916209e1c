package config

import "log"

// The signing secret and algorithm have no safe defaults, startup stops
// without them.
func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
