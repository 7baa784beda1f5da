// Copyright 2022 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spaserve

import (
	"errors"
	"io/fs"
	"net/http"
)

// ErrMissingEntryDocument signals that the entry document of the SPA cannot be
// served. This is a deployment problem and not the client's fault, so it never
// maps onto a 404.
var ErrMissingEntryDocument = errors.New("SPA entry document unavailable")

// entryDocumentError wraps the reason why the entry document could not be
// served, while still matching ErrMissingEntryDocument.
type entryDocumentError struct {
	err error
}

func (e *entryDocumentError) Error() string {
	return ErrMissingEntryDocument.Error() + ": " + e.err.Error()
}

func (e *entryDocumentError) Unwrap() error { return e.err }

func (e *entryDocumentError) Is(target error) bool {
	return target == ErrMissingEntryDocument
}

// NormalizedHttpError writes a normalized HTTP error message and HTTP status
// code based on the specified error, but not leaking any interesting internal
// server details from this specified error.
//
// Only missing resources are reported as such; permission problems and any
// other I/O trouble are server errors, as the static assets are supposed to
// be fully readable to us.
func NormalizedHttpError(w http.ResponseWriter, err error) {
	status := NormalizedStatus(err)
	http.Error(w, http.StatusText(status), status)
}

// NormalizedStatus returns the HTTP status code NormalizedHttpError would send
// for the specified error.
func NormalizedStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingEntryDocument):
		return http.StatusInternalServerError
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
