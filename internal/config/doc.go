// Package config loads the optional agent manifest used by agentctl and by
// programs embedding the SDK. The manifest complements the environment rather
// than replacing it: credentials and the proxy URL may live in either place,
// and chain aliases give long CAIP-2 ids a memorable name.
package config
