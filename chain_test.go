// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package spaserve

import (
	"net/http"

	"github.com/ISCODEVUTB/PublicTransitAgency/test/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("chain of stages", func() {

	decline := func(calls *[]string, name string) Stage {
		return func(w http.ResponseWriter, r *http.Request) bool {
			*calls = append(*calls, name)
			return false
		}
	}

	handle := func(calls *[]string, name string) Stage {
		return func(w http.ResponseWriter, r *http.Request) bool {
			*calls = append(*calls, name)
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(name))
			return true
		}
	}

	It("stops at the first stage handling the request", func() {
		var calls []string
		c := Chain{decline(&calls, "a"), handle(&calls, "b"), handle(&calls, "c")}
		w := httptest.NewRecorder()
		c.ServeHTTP(w, Successful(http.NewRequest(http.MethodGet, "/foo", nil)))
		Expect(calls).To(Equal([]string{"a", "b"}))
		Expect(w.Code).To(Equal(http.StatusAccepted))
		Expect(w.Body.String()).To(Equal("b"))
	})

	DescribeTable("answers requests nobody wants",
		func(method string, expectedStatus int, expectedAllow string) {
			var calls []string
			c := Chain{decline(&calls, "a"), decline(&calls, "b")}
			w := httptest.NewRecorder()
			c.ServeHTTP(w, Successful(http.NewRequest(method, "/foo", nil)))
			Expect(calls).To(Equal([]string{"a", "b"}))
			Expect(w.Code).To(Equal(expectedStatus))
			Expect(w.Header().Get("Allow")).To(Equal(expectedAllow))
		},
		Entry("GET", http.MethodGet, http.StatusNotFound, ""),
		Entry("HEAD", http.MethodHead, http.StatusNotFound, ""),
		Entry("POST", http.MethodPost, http.StatusMethodNotAllowed, "GET, HEAD"),
		Entry("DELETE", http.MethodDelete, http.StatusMethodNotAllowed, "GET, HEAD"),
	)

	It("answers with 404 when empty", func() {
		w := httptest.NewRecorder()
		Chain{}.ServeHTTP(w, Successful(http.NewRequest(http.MethodGet, "/", nil)))
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	DescribeTable("knows read methods",
		func(method string, expected bool) {
			Expect(isReadMethod(&http.Request{Method: method})).To(Equal(expected))
		},
		Entry(nil, "", true),
		Entry(nil, http.MethodGet, true),
		Entry(nil, http.MethodHead, true),
		Entry(nil, http.MethodPut, false),
		Entry(nil, http.MethodOptions, false),
	)

})
