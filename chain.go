// Copyright 2026 Harald Albrecht.
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
	"io/fs"
	"net/http"
	"strings"
)

// Stage tries to handle a request. It returns true if it has written a
// definitive response (including error responses), or false if it declines
// the request, in which case it must not have touched the response at all.
type Stage func(w http.ResponseWriter, r *http.Request) bool

// Chain is an ordered list of stages that gets tried in sequence until the
// first stage handles the request. If no stage is willing to handle the
// request, Chain answers with a 405 for methods other than GET and HEAD, and
// with a 404 otherwise.
type Chain []Stage

// allowedMethods lists the request methods serving an SPA makes sense for.
var allowedMethods = []string{http.MethodGet, http.MethodHead}

// ServeHTTP implements http.Handler.
func (c Chain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, stage := range c {
		if stage(w, r) {
			return
		}
	}
	if !isReadMethod(r) {
		w.Header().Set("Allow", strings.Join(allowedMethods, ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
		return
	}
	NormalizedHttpError(w, fs.ErrNotExist)
}

// isReadMethod returns true if the request only wants to read a resource.
func isReadMethod(r *http.Request) bool {
	if r.Method == "" {
		return true // ...as per http.Request, "" means GET.
	}
	for _, method := range allowedMethods {
		if r.Method == method {
			return true
		}
	}
	return false
}
