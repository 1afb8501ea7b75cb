// Package config loads an optional task file, written in HCL or as plain
// "key value" lines. The file can set any of the
// values otherwise given on the command line; attributes it leaves out keep
// whatever the caller already has.
//
// Expressions are evaluated with an `env` object holding the process
// environment, so secrets can stay out of the file:
//
//	ndex {
//	  identity = env.NDEX_USER
//	}
package config
