// Package ndex publishes a hierarchy to an NDEx server and returns the URL of
// the hosted network.
//
// The hierarchy is encoded as a CX network (the aspect-list JSON format NDEx
// ingests), uploaded with HTTP basic auth through resty, and optionally made
// public with a follow-up system property update.
package ndex
