// Package task sequences one run of the clustering pipeline and encodes its
// outcome as a single result line.
//
// A run moves through CONFIGURED, EXECUTING, PARSING, BUILDING, PUBLISHING
// and DONE. Any failure between EXECUTING and PUBLISHING moves it to FAILED,
// which is absorbing: there are no retries and nothing is resumed. Writing
// the raw algorithm output to disk is the one step whose failure is only
// recorded as a warning.
//
// The Outcome of a run is turned into exactly one line by Encode:
//
//	RESULT:<url>\n
//	ERROR:<message>\n
package task
