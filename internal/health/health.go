// Package health answers liveness probes.  The probe never touches storage:
// a 200 means the process is up and serving, nothing more.
package health

import "net/http"

// Check writes 200 with an empty body.
func Check(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
