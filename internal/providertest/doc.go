// Package providertest provides a mock provider HTTP server and canned
// payload builders for adapter tests.
package providertest
