// Package common provides helpers shared by the MCP tool packages: account
// selection and handler instrumentation.
package common
