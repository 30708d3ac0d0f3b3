// Package labdb provides an HTTP client for the database API of a lab
// automation server.
//
// The lab server exposes the instrument capabilities it advertises, the
// measurement/computation requests placed by tenants, and the results
// posted for those requests. The client authenticates with user
// credentials to obtain a short-lived access token and passes that token
// on every data request.
//
// Payload schemas belong to the lab server and are treated as opaque
// JSON here: the data is snapshotted to files and archived as-is.
//
// Status errors are reported as *archive.StatusError so command-line
// error handling is uniform across both remotes.
package labdb
