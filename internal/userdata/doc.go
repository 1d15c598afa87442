// Package userdata manages the ~/.decyphertek-ai/ directory structure: the
// store of installed apps, skills and agent assets, the env/ secret files and
// the host's own state. It handles path resolution, initialization, secret
// lookup and the store health check whose results feed the health report.
package userdata
