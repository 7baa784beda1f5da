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
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ForwardedPrefixHeader, if present, specifies the prefix that need to be
// preprended to the request's URI path in order to learn the original path
// when hitting the path rewriting proxy.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI (or sometimes only
// the original URI path) of a request when hitting the first path rewriting
// proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// baseRe matches the base element in index.html. The non-greedy "*?" keeps the
// match from running up to the last empty element in the document.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/>)`)

// SPAHandler implements an http.Handler that serves static assets found in its
// fs, and the entry document on all other request paths. It does so by
// running a Chain of two stages: the static asset resolver, followed by the
// fallback to the entry document.
type SPAHandler struct {
	fs            fs.FS         // the FS to serve static resources from.
	index         string        // (unrooted) path and name of the entry document inside fs.
	chain         Chain         // resolver first, then fallback.
	rewriteBase   bool          // rewrite <base href> based on proxy headers?
	indexRewriter IndexRewriter // optional user function to post-process the entry document.
	log           *zap.Logger
}

// NewSPAHandler returns a new HTTP handler serving static resources from the
// specified fs. It serves the index resource instead whenever no directly
// matching file can be found on the specified fs. The index resource should be
// specified as an unrooted, slash-separated path+name to be servable from the
// given fs; but NewSPAHandler will sanitize the index path anyway.
//
// In order to serve the static resources from a directory on the OS file
// system, use os.DirFS:
//
//	h := NewSPAHandler(os.DirFS("build/web"), "index.html")
func NewSPAHandler(fs fs.FS, index string, opts ...SPAHandlerOption) *SPAHandler {
	h := &SPAHandler{
		fs:    fs,
		index: path.Clean("/" + index)[1:],
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.chain = Chain{h.serveStaticAsset, h.serveIndex}
	return h
}

// SPAHandlerOption sets optional properties at the time of creating an
// SPAHandler.
type SPAHandlerOption func(*SPAHandler)

// IndexRewriter rewrites (parts) of the entry document contents to be
// delivered to a requesting client. It can be optionally activated using the
// WithIndexRewriter option when creating a new SPAHandler.
type IndexRewriter func(r *http.Request, index string) string

// WithIndexRewriter sets the specified IndexRewriter that gets called before
// delivering the entry document contents to requesting clients, allowing for
// application-specific changes.
func WithIndexRewriter(rewriter IndexRewriter) SPAHandlerOption {
	return func(h *SPAHandler) {
		h.indexRewriter = rewriter
	}
}

// WithBaseRewriting enables rewriting the entry document's <base href="...">
// element to the base path the client sees, derived from ForwardedPrefixHeader
// and ForwardedUriHeader. Without this option, the entry document is served
// as-is.
func WithBaseRewriting() SPAHandlerOption {
	return func(h *SPAHandler) {
		h.rewriteBase = true
	}
}

// WithLogger sets the logger to report failed requests to, as well as
// (at debug level) what has been served.
func WithLogger(log *zap.Logger) SPAHandlerOption {
	return func(h *SPAHandler) {
		if log != nil {
			h.log = log
		}
	}
}

// ServeHTTP either serves a static resource when available or otherwise the
// entry document. This behavior is required for SPAs with client-side DOM
// routers, as otherwise bookmarking (router) links or reloading an SPA with
// the current route other than "/" would fail.
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Slapping "/" in front ensures that path.Clean never resolves ".." beyond
	// the root of our fs.
	r.URL.Path = path.Clean("/" + r.URL.Path)
	h.chain.ServeHTTP(w, r)
}

// serveStaticAsset tries to serve a regular file requested by r.URL.Path from
// the SPAHandler's fs, returning true if it did, or if it failed with an
// error response. If no such static asset exists, nothing is served and false
// is returned instead.
//
// IMPORTANT: the passed r.URL.Path must have already been sanitized.
func (h *SPAHandler) serveStaticAsset(w http.ResponseWriter, r *http.Request) bool {
	if !isReadMethod(r) {
		return false
	}
	name := r.URL.Path[1:] // ...fs.FS uses unrooted paths.
	if name == "" {
		return false // hitting root is always a case for the entry document.
	}
	if hasDotSegment(name) {
		return false // dotfiles and dot directories are never published.
	}
	f, err := h.fs.Open(name)
	if err != nil {
		if isMissing(err) {
			return false
		}
		h.fail(w, r, err)
		return true
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		h.fail(w, r, err)
		return true
	}
	if info.Mode()&fs.ModeType != 0 {
		return false // directories and other oddities are client-side routes.
	}
	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			h.fail(w, r, err)
			return true
		}
		content = bytes.NewReader(data)
	}
	h.log.Debug("serving static asset", zap.String("path", r.URL.Path))
	// Not using http.FileServer here, as it would redirect ".../index.html"
	// instead of serving it.
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	return true
}

// serveIndex serves the entry document for any read request, optionally
// rewriting its HTML base element to refer the correct base path of the SPA.
func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) bool {
	if !isReadMethod(r) {
		return false
	}
	contents, modTime, err := h.readIndex()
	if err != nil {
		h.fail(w, r, &entryDocumentError{err: err})
		return true
	}
	if h.rewriteBase {
		// Sanitize the base path so it cannot interfere with the "$1" and
		// "$2" back references. As this ain't VMS (shudder), we don't need "$"
		// in SPA paths anyway.
		base := strings.ReplaceAll(h.basename(r), "$", "")
		contents = baseRe.ReplaceAllString(contents, "${1}"+base+"${2}")
	}
	if h.indexRewriter != nil {
		contents = h.indexRewriter(r, contents)
	}
	h.log.Debug("serving entry document", zap.String("path", r.URL.Path))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, path.Base(h.index), modTime, strings.NewReader(contents))
	return true
}

// readIndex returns the contents of the entry document and when it was last
// modified.
func (h *SPAHandler) readIndex() (string, time.Time, error) {
	f, err := h.fs.Open(h.index)
	if err != nil {
		return "", time.Time{}, err
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return "", time.Time{}, err
	}
	if !info.Mode().IsRegular() {
		return "", time.Time{}, &fs.PathError{Op: "read", Path: h.index, Err: fs.ErrInvalid}
	}
	contents, err := io.ReadAll(f)
	if err != nil {
		return "", time.Time{}, err
	}
	return string(contents), info.ModTime(), nil
}

// fail logs the passed error and sends a normalized error response to the
// client.
func (h *SPAHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("cannot serve request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	NormalizedHttpError(w, err)
}

// isMissing returns true if the error indicates that there's no such static
// asset, as opposed to a real problem accessing it. Paths running through a
// plain file as if it were a directory count as missing, and so do paths
// rejected by fs.ValidPath.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrInvalid) ||
		errors.Is(err, syscall.ENOTDIR)
}

// hasDotSegment returns true if any element of the slash-separated name starts
// with ".", such as ".env" or ".git/config".
func hasDotSegment(name string) bool {
	for _, segment := range strings.Split(name, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}

// originalReqPath returns the (hopefully) original path when hitting the first
// proxy in a chain, based on what has been passed down to us. If no suitable
// forwarding information is present, the original -- and already sanitized --
// request URL path.
func (h *SPAHandler) originalReqPath(r *http.Request) string {
	// A rewritten request path started out as the forwarded prefix, followed
	// by whatever we see now.
	if fwprefix := r.Header.Get(ForwardedPrefixHeader); fwprefix != "" {
		return path.Join(path.Clean("/"+fwprefix), r.URL.Path)
	}
	// Some proxies pass only the original request path, others the full
	// original URI.
	fwuri := r.Header.Get(ForwardedUriHeader)
	switch {
	case fwuri == "":
	case strings.HasPrefix(fwuri, "/"):
		return path.Clean(fwuri)
	default:
		if u, err := url.Parse(fwuri); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return r.URL.Path
}

// basename returns the URI request path base based on the given request, by
// consulting proxy headers when available. Rewriting forwarding proxies need to
// preserve the original client-side request URI path for this to work; if
// deriving the base name is impossible, the base is taken to be "/" from the
// clients' perspective.
func (h *SPAHandler) basename(r *http.Request) string {
	reqPath := r.URL.Path
	origPath := h.originalReqPath(r)
	// The reverse proxy might have redirected /foo to /foo/ and then rewritten
	// the path to /.
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(origPath, "/") {
		origPath += "/"
	}
	var base string
	if strings.HasSuffix(origPath, reqPath) {
		base = strings.TrimSuffix(origPath, reqPath)
	}
	// Browsers clip off the final element of a base without trailing "/".
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
