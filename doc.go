/*

Package spaserve serves "Single Page Applications" (SPAs), supporting
client-side DOM routing: requests for existing static assets are answered with
these assets, all other (read) requests with the SPA's entry document,
typically "index.html".

The SPAHandler type implements http.Handler to serve the SPA and its static
resources. The SPAHandler fetches these resources from any resource provider
implementing the fs.FS interface, such as os.DirFS for a build output
directory, or an embedded file system.

Internally, an SPAHandler is a Chain of Stages: first the static asset
resolver, then the fallback to the entry document. Each Stage either handles a
request or declines it, leaving it to the next Stage.

Optionally, the SPAHandler rewrites the entry document's base element to match
the base path the client sees when behind a path rewriting proxy, see
WithBaseRewriting.

*/
package spaserve
